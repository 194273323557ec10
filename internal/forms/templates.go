package forms

import (
	"regexp"
	"strings"
)

// Built-in validation patterns.
var (
	reDate    = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	reAadhaar = regexp.MustCompile(`^\d{4}\s?\d{4}\s?\d{4}$`)
	reMobile  = regexp.MustCompile(`^\d{10}$`)
	rePincode = regexp.MustCompile(`^\d{6}$`)
	reYear    = regexp.MustCompile(`^20\d{2}$`)
	reIFSC    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
)

func builtinTemplates() []*Template {
	return []*Template{
		{
			ID:          "govt-exam",
			Name:        "Government Exam Registration",
			Description: "SSC, UPSC, Bank PO style registration form",
			Fields: []FieldDescriptor{
				{ID: "name", Label: "Candidate Name (as per Aadhaar)", Aliases: []string{"Full Name", "Name"}, Required: true, Format: "UPPERCASE", Transform: strings.ToUpper, StaticWarning: "Must match Aadhaar exactly"},
				{ID: "father", Label: "Father's Name", Aliases: []string{"Father's Name"}, Required: true, Format: "UPPERCASE", Transform: strings.ToUpper},
				{ID: "mother", Label: "Mother's Name", Aliases: []string{"Mother's Name"}, Required: true, Format: "UPPERCASE", Transform: strings.ToUpper},
				{ID: "dob", Label: "Date of Birth", Aliases: []string{"Date of Birth", "DOB"}, Required: true, Format: "DD/MM/YYYY", Pattern: reDate},
				{ID: "gender", Label: "Gender", Aliases: []string{"Gender"}, Required: true, Placeholder: "Male / Female / Other"},
				{ID: "aadhaar", Label: "Aadhaar Number", Aliases: []string{"Aadhaar Number", "Aadhaar"}, Required: true, Format: "XXXX XXXX XXXX", Pattern: reAadhaar, StaticWarning: "Must be 12 digits"},
				{ID: "mobile", Label: "Mobile Number", Aliases: []string{"Mobile", "Phone", "Mobile Number"}, Required: true, Format: "10 digits", Pattern: reMobile},
				{ID: "email", Label: "Email Address", Aliases: []string{"Email", "Email Address"}, Required: true, Transform: strings.ToLower},
				{ID: "address", Label: "Permanent Address", Aliases: []string{"Address", "Permanent Address"}, Required: true},
				{ID: "pincode", Label: "PIN Code", Aliases: []string{"PIN Code", "Pincode"}, Required: true, Format: "6 digits", Pattern: rePincode},
			},
		},
		{
			ID:          "college-admission",
			Name:        "College Admission Form",
			Description: "University/College enrollment application",
			Fields: []FieldDescriptor{
				{ID: "name", Label: "Full Name", Aliases: []string{"Full Name", "Name"}, Required: true, Format: "UPPERCASE", Transform: strings.ToUpper},
				{ID: "dob", Label: "Date of Birth", Aliases: []string{"Date of Birth", "DOB"}, Required: true, Format: "DD/MM/YYYY"},
				{ID: "10th-marks", Label: "10th Percentage/CGPA", Aliases: []string{"10th Percentage", "10th Marks", "Class 10 Percentage"}, Required: true},
				{ID: "12th-marks", Label: "12th Percentage/CGPA", Aliases: []string{"12th Percentage", "12th Marks", "Class 12 Percentage"}, Required: true},
				{ID: "board", Label: "Board of Education", Aliases: []string{"Board", "Education Board", "10th Board"}, Required: true},
				{ID: "passing-year", Label: "Year of Passing (12th)", Aliases: []string{"12th Year", "Year of Passing", "Passing Year"}, Required: true, Pattern: reYear},
				{ID: "aadhaar", Label: "Aadhaar Number", Aliases: []string{"Aadhaar Number", "Aadhaar"}, Required: true},
				{ID: "email", Label: "Email Address", Aliases: []string{"Email", "Email Address"}, Required: true},
				{ID: "mobile", Label: "Mobile Number", Aliases: []string{"Mobile", "Phone", "Mobile Number"}, Required: true},
				{ID: "address", Label: "Correspondence Address", Aliases: []string{"Address", "Permanent Address"}, Required: true},
			},
		},
		{
			ID:          "scholarship",
			Name:        "Scholarship Application",
			Description: "Merit/Need-based scholarship form",
			Fields: []FieldDescriptor{
				{ID: "name", Label: "Applicant Name", Aliases: []string{"Full Name", "Name"}, Required: true, Format: "UPPERCASE", Transform: strings.ToUpper, StaticWarning: "As per bank account"},
				{ID: "father", Label: "Father's/Guardian's Name", Aliases: []string{"Father's Name"}, Required: true},
				{ID: "dob", Label: "Date of Birth", Aliases: []string{"Date of Birth", "DOB"}, Required: true},
				{ID: "category", Label: "Category", Aliases: []string{"Category", "Caste Category"}, Required: true, Placeholder: "General / OBC / SC / ST"},
				{ID: "aadhaar", Label: "Aadhaar Number", Aliases: []string{"Aadhaar Number", "Aadhaar"}, Required: true},
				{ID: "bank-account", Label: "Bank Account Number", Aliases: []string{"Bank Account", "Account Number"}, Required: true, StaticWarning: "Verify with passbook"},
				{ID: "ifsc", Label: "IFSC Code", Aliases: []string{"IFSC", "IFSC Code", "Bank IFSC"}, Required: true, Format: "11 characters", Pattern: reIFSC},
				{ID: "income", Label: "Annual Family Income", Aliases: []string{"Family Income", "Annual Income"}, Required: true},
				{ID: "10th-marks", Label: "10th Percentage", Aliases: []string{"10th Percentage", "10th Marks"}, Required: true},
				{ID: "institution", Label: "Current Institution Name", Aliases: []string{"Institution", "College Name", "School Name"}, Required: true},
			},
		},
	}
}

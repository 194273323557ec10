package mcpserver

// FieldFormatContract describes the vault categories and the canonical
// field formats that LLM consumers should follow when storing or
// suggesting values.
const FieldFormatContract = `# FormVault Field Format Contract

Vault fields are grouped into four categories. When upserting a field,
pick the category that matches its content.

## Categories

- **personal**: name, date of birth, gender, father's name, mother's name
- **identity**: ID numbers (Aadhaar, PAN, passport, voter ID), registration numbers
- **contact**: address, phone, email, city, state, pincode
- **academic**: grades, marks, subjects, institution names, roll numbers, years

## Canonical formats

| Field name | Format | Notes |
|---|---|---|
| Full Name | UPPERCASE, no special characters | Must match Aadhaar/ID exactly |
| Father's Name | UPPERCASE | Must match certificate exactly |
| Date of Birth | DD/MM/YYYY | |
| Aadhaar Number | XXXX XXXX XXXX | Exactly 12 digits, spaces optional |
| PAN Number | AAAAA0000A | 10 characters, case sensitive |
| Mobile | 10 digits | No country code |
| Email | lowercase@domain.com | Stored lowercase |
| PIN Code | 6 digits | |
| IFSC Code | AAAA0XXXXXX | 11 characters, uppercase |

## Rules

1. **Field names are matched case-insensitively** against template
   aliases, so use the canonical names above where possible.
2. **One value per (category, field name).** Upserting again replaces
   the stored value and resets verification.
3. **Values are stored as given.** Form templates apply their own
   transforms (uppercase names, lowercase email) at fill time.
4. **Verification is a user action.** Only mark a field verified when
   the user has confirmed it against the source document.
`

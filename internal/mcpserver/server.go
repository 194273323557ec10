// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes FormVault vault and template tools for LLM integration
// via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/formvault/formvault/internal/forms"
	"github.com/formvault/formvault/internal/formservice"
	"github.com/formvault/formvault/internal/models"
	"github.com/formvault/formvault/internal/vault"
)

// localUser is the vault scope for stdio sessions; the MCP transport
// carries no caller identity.
const localUser = "local"

// Server wraps the MCP server with FormVault tools.
type Server struct {
	mcp      *server.MCPServer
	store    vault.Store
	registry *forms.Registry
	svc      *formservice.Service
}

// New creates a new MCP server with all FormVault tools registered.
func New(store vault.Store, registry *forms.Registry, svc *formservice.Service) *Server {
	s := &Server{store: store, registry: registry, svc: svc}

	s.mcp = server.NewMCPServer(
		"FormVault",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the available form templates with their field descriptors."),
	), s.listTemplates)

	s.mcp.AddTool(mcp.NewTool("autofill_form",
		mcp.WithDescription("Reconcile a form template against the vault: per-field values and "+
			"statuses, a readiness percentage, warnings and a submission checklist."),
		mcp.WithString("template_id", mcp.Required(), mcp.Description("Template id (govt-exam, college-admission, scholarship)")),
	), s.autofillForm)

	s.mcp.AddTool(mcp.NewTool("validate_field",
		mcp.WithDescription("Validate a manually entered value for one template field. "+
			"The field's transform is applied before validation."),
		mcp.WithString("template_id", mcp.Required(), mcp.Description("Template id")),
		mcp.WithString("field_id", mcp.Required(), mcp.Description("Field id within the template")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Raw value to validate")),
	), s.validateField)

	s.mcp.AddTool(mcp.NewTool("search_vault",
		mcp.WithDescription("Substring search over vault field names, values and categories."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchVault)

	s.mcp.AddTool(mcp.NewTool("upsert_vault_field",
		mcp.WithDescription("Store or replace one vault field. Field names and formats MUST "+
			"follow the contract; read it first via the get_field_formats tool or the "+
			"formvault://field-formats resource."),
		mcp.WithString("category", mcp.Required(), mcp.Description("One of: personal, identity, contact, academic")),
		mcp.WithString("field_name", mcp.Required(), mcp.Description("Canonical field name (e.g. Full Name, Aadhaar Number)")),
		mcp.WithString("field_value", mcp.Required(), mcp.Description("Field value")),
	), s.upsertVaultField)

	s.mcp.AddTool(mcp.NewTool("get_field_formats",
		mcp.WithDescription("Returns the canonical FormVault field format contract. "+
			"Call this before upserting vault fields."),
	), s.getFieldFormats)

	// Resource: field format contract.
	s.mcp.AddResource(
		mcp.NewResource("formvault://field-formats", "Field Format Contract",
			mcp.WithResourceDescription("Canonical vault categories and field formats."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFieldFormatsResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.registry.Templates(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) autofillForm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templateID, err := req.RequireString("template_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state, err := s.svc.Autofill(ctx, localUser, templateID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown template: %s", templateID)), nil
	}
	out, _ := json.MarshalIndent(state, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) validateField(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templateID, err := req.RequireString("template_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fieldID, err := req.RequireString("field_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := req.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fs, err := s.svc.ValidateField(ctx, templateID, fieldID, value)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown template or field: %s/%s", templateID, fieldID)), nil
	}
	out, _ := json.MarshalIndent(fs, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchVault(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := s.store.Search(localUser, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no matching vault fields"), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) upsertVaultField(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fieldName, err := req.RequireString("field_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fieldValue, err := req.RequireString("field_value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	valid := false
	for _, c := range models.Categories {
		if c == category {
			valid = true
			break
		}
	}
	if !valid {
		return mcp.NewToolResultError(fmt.Sprintf("invalid category: %s", category)), nil
	}

	saved, err := s.store.Upsert(models.VaultItem{
		UserID:     localUser,
		Category:   category,
		FieldName:  fieldName,
		FieldValue: fieldValue,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("stored: %s/%s (id %s)", category, saved.FieldName, saved.ID)), nil
}

func (s *Server) getFieldFormats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FieldFormatContract), nil
}

func (s *Server) readFieldFormatsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "formvault://field-formats",
			MIMEType: "text/markdown",
			Text:     FieldFormatContract,
		},
	}, nil
}

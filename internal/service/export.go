package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/fathima-sithara/contacts-service/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// exportContact is the attachment shape of one contact. Identity is written as
// hex so both encodings round-trip it as a plain string.
type exportContact struct {
	ID       string   `json:"_id" yaml:"_id"`
	Photo    string   `json:"Photo" yaml:"Photo"`
	Name     string   `json:"Name" yaml:"Name"`
	Contact  string   `json:"Contact" yaml:"Contact"`
	Email    string   `json:"Email" yaml:"Email"`
	Job      string   `json:"Job" yaml:"Job"`
	Company  string   `json:"Company" yaml:"Company"`
	Labels   []string `json:"Labels" yaml:"Labels"`
	DateTime string   `json:"DateTime" yaml:"DateTime"`
}

type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportContacts renders the user's full active list as a downloadable file.
// An empty format means json.
func (s *ContactService) ExportContacts(ctx context.Context, username, format string) (exp *Export, err error) {
	defer func() { s.metrics.Observe("export_contacts", err) }()

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatYAML {
		return nil, validationError("Unsupported export format. Use json or yaml.")
	}

	list, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}
	rows := make([]exportContact, 0, len(list))
	for _, c := range list {
		rows = append(rows, toExport(c))
	}

	var body []byte
	switch format {
	case FormatYAML:
		body, err = yaml.Marshal(rows)
		exp = &Export{Filename: "contacts.yaml", ContentType: "application/yaml"}
	default:
		body, err = json.MarshalIndent(rows, "", "  ")
		exp = &Export{Filename: "contacts.json", ContentType: "application/json"}
	}
	if err != nil {
		return nil, s.storeFailure("export contacts", username, "An error occurred while exporting contacts.", err)
	}
	exp.Body = body
	return exp, nil
}

func toExport(c models.Contact) exportContact {
	labels := c.Labels
	if labels == nil {
		labels = []string{}
	}
	out := exportContact{
		ID:      c.ID.Hex(),
		Photo:   c.Photo,
		Name:    c.Name,
		Contact: c.Contact,
		Email:   c.Email,
		Job:     c.Job,
		Company: c.Company,
		Labels:  labels,
	}
	if !c.DateTime.IsZero() {
		out.DateTime = c.DateTime.UTC().Format(time.RFC3339)
	}
	return out
}

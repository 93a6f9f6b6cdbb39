package forms

import "github.com/frc-scouting/scout-sync/pkg/scouting"

type SaveSchemaRequest struct {
	Fields []scouting.FieldDefinition `json:"fields"`
}

type AddFieldRequest struct {
	Label string `json:"label" binding:"required"`
	Type  string `json:"type" binding:"required"`
	// Options may be sent as a list or as one comma separated string.
	Options    []string `json:"options"`
	OptionsCSV string   `json:"options_csv"`
	Multiple   bool     `json:"multiple"`
}

type SchemaResponse struct {
	Season  int                        `json:"season"`
	Purpose scouting.FormPurpose       `json:"purpose"`
	Fields  []scouting.FieldDefinition `json:"fields"`
	Saved   bool                       `json:"saved"`
}

// Package models defines the core domain models for workflow generation and validation
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Node type identifiers understood by the generator. They follow the target
// platform's dotted namespace so exported documents import without changes.
const (
	NodeTypeWebhook          = "n8n-nodes-base.webhook"
	NodeTypeCode             = "n8n-nodes-base.code"
	NodeTypeFunction         = "n8n-nodes-base.function"
	NodeTypeFunctionItem     = "n8n-nodes-base.functionItem"
	NodeTypeHTTPRequest      = "n8n-nodes-base.httpRequest"
	NodeTypeSet              = "n8n-nodes-base.set"
	NodeTypeIf               = "n8n-nodes-base.if"
	NodeTypeSwitch           = "n8n-nodes-base.switch"
	NodeTypeCron             = "n8n-nodes-base.cron"
	NodeTypeScheduleTrigger  = "n8n-nodes-base.scheduleTrigger"
	NodeTypeManualTrigger    = "n8n-nodes-base.manualTrigger"
	NodeTypeEmailSend        = "n8n-nodes-base.emailSend"
	NodeTypePostgres         = "n8n-nodes-base.postgres"
	NodeTypeSplitInBatches   = "n8n-nodes-base.splitInBatches"
	NodeTypeMerge            = "n8n-nodes-base.merge"
	NodeTypeRespondToWebhook = "n8n-nodes-base.respondToWebhook"
	NodeTypeSpreadsheetFile  = "n8n-nodes-base.spreadsheetFile"
)

// CategoryType groups node types in the catalog.
type CategoryType string

const (
	CategoryTrigger   CategoryType = "trigger"
	CategoryAction    CategoryType = "action"
	CategoryTransform CategoryType = "transform"
	CategoryFlow      CategoryType = "flow"
	CategoryCore      CategoryType = "core"
)

// ParameterType is the declared value type of a node parameter.
type ParameterType string

const (
	ParameterTypeString     ParameterType = "string"
	ParameterTypeNumber     ParameterType = "number"
	ParameterTypeBoolean    ParameterType = "boolean"
	ParameterTypeOptions    ParameterType = "options"
	ParameterTypeCollection ParameterType = "collection"
)

var (
	ErrDuplicateNodeType    = errors.New("duplicate node type")
	ErrEmptyOptions         = errors.New("options parameter must declare at least one option")
	ErrInvalidReplacement   = errors.New("replaced_by must reference a non-deprecated node type")
	ErrInvalidNodeTypeID    = errors.New("node type id is required")
	ErrUnknownParameterType = errors.New("unknown parameter type")
)

// ValidationRules are optional constraints checked on a parameter value.
type ValidationRules struct {
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"   yaml:"pattern,omitempty"`
	Minimum   *float64 `json:"minimum,omitempty"   yaml:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"   yaml:"maximum,omitempty"`
	Cron      bool     `json:"cron,omitempty"      yaml:"cron,omitempty"`
}

// ParameterDef describes one parameter of a node type.
type ParameterDef struct {
	Name            string           `json:"name"                       validate:"required"                                         yaml:"name"`
	Type            ParameterType    `json:"type"                       validate:"required,oneof=string number boolean options collection" yaml:"type"`
	Required        bool             `json:"required"                   yaml:"required"`
	DefaultValue    any              `json:"default_value,omitempty"    yaml:"default_value,omitempty"`
	Description     string           `json:"description,omitempty"      yaml:"description,omitempty"`
	Options         []string         `json:"options,omitempty"          yaml:"options,omitempty"`
	ValidationRules *ValidationRules `json:"validation_rules,omitempty" yaml:"validation_rules,omitempty"`
}

// NodeTypeDefinition is a catalog entry describing an available node type.
type NodeTypeDefinition struct {
	TypeID          string          `json:"type_id"               validate:"required"        yaml:"type_id"`
	DisplayName     string          `json:"display_name"          validate:"required"        yaml:"display_name"`
	Category        CategoryType    `json:"category"              validate:"required"        yaml:"category"`
	Description     string          `json:"description"           yaml:"description"`
	Version         int             `json:"version"               validate:"min=1"           yaml:"version"`
	Deprecated      bool            `json:"deprecated"            yaml:"deprecated"`
	ReplacedBy      string          `json:"replaced_by,omitempty" yaml:"replaced_by,omitempty"`
	Keywords        []string        `json:"keywords,omitempty"    yaml:"keywords,omitempty"`
	ParameterSchema []*ParameterDef `json:"parameter_schema"      validate:"dive"            yaml:"parameter_schema"`
}

// Parameter returns the parameter definition with the given name.
func (d *NodeTypeDefinition) Parameter(name string) (*ParameterDef, bool) {
	for _, p := range d.ParameterSchema {
		if p.Name == name {
			return p, true
		}
	}

	return nil, false
}

// ShortName returns the trailing segment of the type id ("httpRequest" for
// "n8n-nodes-base.httpRequest").
func ShortName(typeID string) string {
	if i := strings.LastIndex(typeID, "."); i >= 0 {
		return typeID[i+1:]
	}

	return typeID
}

// ValidateCatalog checks the catalog-wide invariants: unique type ids, non-empty
// option lists and replacements pointing at live node types.
func ValidateCatalog(defs []*NodeTypeDefinition) error {
	byID := make(map[string]*NodeTypeDefinition, len(defs))

	for _, def := range defs {
		if def.TypeID == "" {
			return ErrInvalidNodeTypeID
		}

		if _, exists := byID[def.TypeID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateNodeType, def.TypeID)
		}

		byID[def.TypeID] = def

		for _, p := range def.ParameterSchema {
			switch p.Type {
			case ParameterTypeString, ParameterTypeNumber, ParameterTypeBoolean, ParameterTypeCollection:
			case ParameterTypeOptions:
				if len(p.Options) == 0 {
					return fmt.Errorf("%w: %s.%s", ErrEmptyOptions, def.TypeID, p.Name)
				}
			default:
				return fmt.Errorf("%w: %s.%s (%s)", ErrUnknownParameterType, def.TypeID, p.Name, p.Type)
			}
		}
	}

	for _, def := range defs {
		if def.ReplacedBy == "" {
			continue
		}

		successor, ok := byID[def.ReplacedBy]
		if !ok || successor.Deprecated {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidReplacement, def.TypeID, def.ReplacedBy)
		}
	}

	return nil
}

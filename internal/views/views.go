// Package views projects one completed assessment into the three
// audience-specific documents: adjuster/insurance, client, and
// internal/technician. Projection selects and relabels fields only; no
// figure is ever recomputed here.
package views

import (
	"fmt"
	"math"
	"time"

	"github.com/mfairbank/restocalc/internal/types"
)

// ViewState tracks a view through the delivery lifecycle.
type ViewState string

const (
	// StateDraft marks a view generated from a still-mutable assessment.
	StateDraft ViewState = "DRAFT"
	// StateFinal marks a view generated from a frozen assessment.
	StateFinal ViewState = "FINAL"
)

// Audience identifies which projection a view carries.
type Audience string

const (
	AudienceAdjuster Audience = "adjuster"
	AudienceClient   Audience = "client"
	AudienceInternal Audience = "internal"
)

// complianceCitations are the standards references carried on every
// insurance-facing document.
var complianceCitations = []string{
	"IICRC S500 Standard for Professional Water Damage Restoration",
	"IICRC S520 Standard for Professional Mold Remediation (where applicable)",
	"AS/NZS 3666.1 Air-handling and water systems of buildings",
}

// Meta is the lifecycle envelope shared by all three views.
type Meta struct {
	AssessmentID string    `json:"assessment_id"`
	Audience     Audience  `json:"audience"`
	State        ViewState `json:"state"`
	Revision     int       `json:"revision"`
	Delivered    bool      `json:"delivered"`
	DeliveredAt  time.Time `json:"delivered_at,omitempty"`
}

// AdjusterView is the technical/insurance projection: full rationale,
// itemized costs, tax breakdown, and compliance citations.
type AdjusterView struct {
	Meta                Meta                      `json:"meta"`
	SiteAddress         string                    `json:"site_address,omitempty"`
	WaterCategory       int                       `json:"water_category"`
	WaterClass          int                       `json:"water_class"`
	ClassificationBasis []string                  `json:"classification_basis"`
	DryingIndex         int                       `json:"drying_index"`
	DryingStatus        types.DryingStatus        `json:"drying_status"`
	DewPointC           float64                   `json:"dew_point_c"`
	Equipment           *types.EquipmentSelection `json:"equipment,omitempty"`
	LineItems           []types.CostLineItem      `json:"line_items"`
	SubtotalExTaxCents  int64                     `json:"subtotal_ex_tax_cents"`
	TaxAmountCents      int64                     `json:"tax_amount_cents"`
	TotalIncTaxCents    int64                     `json:"total_inc_tax_cents"`
	ComplianceCitations []string                  `json:"compliance_citations"`
	Warnings            []types.Warning           `json:"warnings,omitempty"`
}

// ClientView is the plain-language projection: findings, one total figure,
// and next steps. It carries no itemization and no internal financials.
type ClientView struct {
	Meta             Meta            `json:"meta"`
	Summary          string          `json:"summary"`
	WhatThisMeans    string          `json:"what_this_means"`
	TotalIncTaxCents int64           `json:"total_inc_tax_cents"`
	NextSteps        []string        `json:"next_steps"`
	ContactPhone     string          `json:"contact_phone,omitempty"`
	ContactEmail     string          `json:"contact_email,omitempty"`
	Warnings         []types.Warning `json:"warnings,omitempty"`
}

// DeploymentLine summarizes one equipment group for the field crew.
type DeploymentLine struct {
	Group  string `json:"group"`
	Units  int    `json:"units"`
	Detail string `json:"detail"`
}

// InternalView is the operational projection, including the confidential
// margin derivation. Never delivered outside the business.
type InternalView struct {
	Meta                 Meta                         `json:"meta"`
	Confidential         bool                         `json:"confidential"`
	Deployment           []DeploymentLine             `json:"deployment"`
	EstimatedDryingDays  int                          `json:"estimated_drying_days"`
	TotalAmpDraw         float64                      `json:"total_amp_draw"`
	DirectCostCents      int64                        `json:"direct_cost_cents"`
	DirectCostByCategory map[types.CostCategory]int64 `json:"direct_cost_by_category"`
	TargetMarginRatio    float64                      `json:"target_margin_ratio"`
	SuggestedPriceCents  int64                        `json:"suggested_price_cents"`
	ProjectedProfitCents int64                        `json:"projected_profit_cents"`
	Warnings             []types.Warning              `json:"warnings,omitempty"`
}

// Bundle holds the three projections of one assessment.
type Bundle struct {
	Adjuster *AdjusterView `json:"adjuster"`
	Client   *ClientView   `json:"client"`
	Internal *InternalView `json:"internal"`
}

// Contact is the business contact block printed on client documents.
type Contact struct {
	Phone string `yaml:"phone" json:"phone"`
	Email string `yaml:"email" json:"email"`
}

// ProjectorConfig carries the policy inputs the projector needs.
type ProjectorConfig struct {
	TargetMarginRatio float64 `yaml:"target_margin_ratio" json:"target_margin_ratio"`
	Contact           Contact `yaml:"contact" json:"contact"`
}

// DefaultProjectorConfig returns the shipped projection settings.
func DefaultProjectorConfig() ProjectorConfig {
	return ProjectorConfig{TargetMarginRatio: 0.35}
}

// Project builds the three views from a completed assessment. The view
// state follows the assessment: DRAFT while it is mutable, FINAL once
// frozen.
func Project(a *types.Assessment, cfg ProjectorConfig) (*Bundle, error) {
	if a.Costs == nil {
		return nil, fmt.Errorf("assessment %s has no cost summary; run the pipeline before projecting", a.ID)
	}

	state := StateDraft
	if a.Frozen {
		state = StateFinal
	}
	meta := func(aud Audience) Meta {
		return Meta{AssessmentID: a.ID.String(), Audience: aud, State: state, Revision: 1}
	}

	adjuster := &AdjusterView{
		Meta:                meta(AudienceAdjuster),
		SiteAddress:         a.SiteAddress,
		WaterCategory:       a.Classification.Category,
		WaterClass:          a.Classification.Class,
		ClassificationBasis: a.Classification.Rationale,
		DryingIndex:         a.Psychrometrics.DryingIndex,
		DryingStatus:        a.Psychrometrics.Status,
		DewPointC:           a.Psychrometrics.DewPointC,
		Equipment:           a.Equipment,
		LineItems:           a.Costs.Items,
		SubtotalExTaxCents:  a.Costs.SubtotalExTaxCents,
		TaxAmountCents:      a.Costs.TaxAmountCents,
		TotalIncTaxCents:    a.Costs.TotalIncTaxCents,
		ComplianceCitations: complianceCitations,
		Warnings:            a.Warnings,
	}

	client := &ClientView{
		Meta:             meta(AudienceClient),
		Summary:          clientSummary(a),
		WhatThisMeans:    clientExplanation(a),
		TotalIncTaxCents: a.Costs.TotalIncTaxCents,
		NextSteps:        clientNextSteps(a),
		ContactPhone:     cfg.Contact.Phone,
		ContactEmail:     cfg.Contact.Email,
		Warnings:         a.Warnings,
	}

	internal := &InternalView{
		Meta:                 meta(AudienceInternal),
		Confidential:         true,
		DirectCostCents:      a.Costs.SubtotalExTaxCents,
		DirectCostByCategory: a.Costs.CategoryTotals,
		TargetMarginRatio:    cfg.TargetMarginRatio,
		Warnings:             a.Warnings,
	}
	if a.Equipment != nil {
		internal.Deployment = deploymentPlan(a.Equipment)
		internal.EstimatedDryingDays = a.Equipment.EstimatedDryingDays
		internal.TotalAmpDraw = a.Equipment.TotalAmpDraw
	}
	if cfg.TargetMarginRatio > 0 && cfg.TargetMarginRatio < 1 {
		suggested := float64(internal.DirectCostCents) / (1 - cfg.TargetMarginRatio)
		internal.SuggestedPriceCents = int64(math.Round(suggested))
		internal.ProjectedProfitCents = internal.SuggestedPriceCents - internal.DirectCostCents
	}

	return &Bundle{Adjuster: adjuster, Client: client, Internal: internal}, nil
}

func deploymentPlan(sel *types.EquipmentSelection) []DeploymentLine {
	byGroup := make(map[string]*DeploymentLine)
	var order []string
	for _, line := range sel.Lines {
		dl, ok := byGroup[line.Group]
		if !ok {
			dl = &DeploymentLine{Group: line.Group}
			byGroup[line.Group] = dl
			order = append(order, line.Group)
		}
		dl.Units += line.Quantity
		if dl.Detail != "" {
			dl.Detail += "; "
		}
		dl.Detail += fmt.Sprintf("%dx %s", line.Quantity, line.Name)
	}
	out := make([]DeploymentLine, 0, len(order))
	for _, g := range order {
		out = append(out, *byGroup[g])
	}
	return out
}

func clientSummary(a *types.Assessment) string {
	severity := "minor"
	switch a.Classification.Class {
	case 2:
		severity = "moderate"
	case 3:
		severity = "significant"
	case 4:
		severity = "severe"
	}
	contamination := "clean water"
	switch a.Classification.Category {
	case 2:
		contamination = "contaminated water"
	case 3:
		contamination = "grossly contaminated water requiring sanitisation"
	}
	return fmt.Sprintf(
		"Our inspection found %s water damage across %d area(s), caused by %s. Professional drying equipment is required.",
		severity, len(a.Areas), contamination)
}

func clientExplanation(a *types.Assessment) string {
	switch a.Psychrometrics.Status {
	case types.DryingGood:
		return "Conditions inside the property support fast drying. With the recommended equipment in place, drying should proceed without complications."
	case types.DryingFair:
		return "Conditions inside the property are workable but not ideal. The recommended equipment keeps moisture moving out of affected materials and prevents secondary damage."
	default:
		return "Conditions inside the property are holding moisture in. Without the recommended heating and dehumidification, affected materials will stay wet and mould becomes likely."
	}
}

func clientNextSteps(a *types.Assessment) []string {
	steps := []string{
		"We will deliver and install the drying equipment listed in your quote.",
		"Please keep the equipment running continuously; our technicians will monitor progress daily.",
	}
	if a.Equipment != nil && a.Equipment.EstimatedDryingDays > 0 {
		steps = append(steps, fmt.Sprintf("Drying is expected to take approximately %d day(s).", a.Equipment.EstimatedDryingDays))
	}
	if a.Classification.Category >= 2 {
		steps = append(steps, "Affected surfaces will be treated with antimicrobial solution before drying completes.")
	}
	return steps
}

package leads

import (
	"strings"
	"time"
)

// ProjectType classifies what the prospect wants to build.
type ProjectType string

const (
	ProjectGEOINTAnalytics     ProjectType = "geoint-analytics"
	ProjectSatelliteImagery    ProjectType = "satellite-imagery"
	ProjectMissionPlanning     ProjectType = "mission-planning"
	ProjectPlatformIntegration ProjectType = "platform-integration"
	ProjectTraining            ProjectType = "training"
	ProjectOther               ProjectType = "other"
)

// Timeline is the prospect's buying horizon.
type Timeline string

const (
	TimelineImmediate   Timeline = "immediate"
	TimelineOneToThree  Timeline = "1-3-months"
	TimelineThreeToSix  Timeline = "3-6-months"
	TimelineSixToTwelve Timeline = "6-12-months"
	TimelineExploring   Timeline = "exploring"
)

// ClearanceLevel is the highest clearance the prospect's team holds.
type ClearanceLevel string

const (
	ClearanceNone         ClearanceLevel = "none"
	ClearancePublicTrust  ClearanceLevel = "public-trust"
	ClearanceConfidential ClearanceLevel = "confidential"
	ClearanceSecret       ClearanceLevel = "secret"
	ClearanceTopSecret    ClearanceLevel = "top-secret"
	ClearanceTSSCI        ClearanceLevel = "ts-sci"
)

// Option is a selectable value shown by the contact form.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var projectTypeOptions = []Option{
	{string(ProjectGEOINTAnalytics), "GEOINT analytics"},
	{string(ProjectSatelliteImagery), "Satellite imagery"},
	{string(ProjectMissionPlanning), "Mission planning"},
	{string(ProjectPlatformIntegration), "Platform integration"},
	{string(ProjectTraining), "Training"},
	{string(ProjectOther), "Other"},
}

var timelineOptions = []Option{
	{string(TimelineImmediate), "Immediate"},
	{string(TimelineOneToThree), "1-3 months"},
	{string(TimelineThreeToSix), "3-6 months"},
	{string(TimelineSixToTwelve), "6-12 months"},
	{string(TimelineExploring), "Just exploring"},
}

var clearanceOptions = []Option{
	{string(ClearanceNone), "None"},
	{string(ClearancePublicTrust), "Public Trust"},
	{string(ClearanceConfidential), "Confidential"},
	{string(ClearanceSecret), "Secret"},
	{string(ClearanceTopSecret), "Top Secret"},
	{string(ClearanceTSSCI), "TS/SCI"},
}

// Valid reports whether p is one of the known project types.
func (p ProjectType) Valid() bool { return hasOption(projectTypeOptions, string(p)) }

// Valid reports whether t is one of the known timelines.
func (t Timeline) Valid() bool { return hasOption(timelineOptions, string(t)) }

// Valid reports whether c is one of the known clearance levels.
func (c ClearanceLevel) Valid() bool { return hasOption(clearanceOptions, string(c)) }

func hasOption(options []Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// FormOptions lists the enumerated choices for the contact form selects.
type FormOptions struct {
	ProjectTypes    []Option `json:"projectTypes"`
	Timelines       []Option `json:"timelines"`
	ClearanceLevels []Option `json:"clearanceLevels"`
}

// Options returns copies of the enumerated choices.
func Options() FormOptions {
	return FormOptions{
		ProjectTypes:    append([]Option(nil), projectTypeOptions...),
		Timelines:       append([]Option(nil), timelineOptions...),
		ClearanceLevels: append([]Option(nil), clearanceOptions...),
	}
}

// FormValues is the raw contact form as posted by the site.
type FormValues struct {
	FirstName      string `json:"firstName" validate:"required,max=100"`
	LastName       string `json:"lastName" validate:"required,max=100"`
	Email          string `json:"email" validate:"required,max=254,email"`
	Phone          string `json:"phone" validate:"required,max=20,phone"`
	Organization   string `json:"organization" validate:"required,min=2,max=200"`
	Title          string `json:"title" validate:"required,min=2,max=100"`
	ProjectType    string `json:"projectType" validate:"omitempty,project_type"`
	Timeline       string `json:"timeline" validate:"omitempty,timeline"`
	ClearanceLevel string `json:"clearanceLevel" validate:"omitempty,clearance_level"`
	Message        string `json:"message" validate:"required,min=10,max=5000"`
	Consent        bool   `json:"consent" validate:"accepted"`

	// Website is the honeypot; the field is hidden from humans.
	Website string `json:"website"`
}

// normalized returns a copy in the form that is validated and delivered:
// markup stripped from free text and surrounding whitespace removed.
func (v FormValues) normalized() FormValues {
	v.FirstName = sanitizeText(v.FirstName)
	v.LastName = sanitizeText(v.LastName)
	v.Email = normalizeEmail(v.Email)
	v.Phone = strings.TrimSpace(v.Phone)
	v.Organization = sanitizeText(v.Organization)
	v.Title = sanitizeText(v.Title)
	v.ProjectType = strings.TrimSpace(v.ProjectType)
	v.Timeline = strings.TrimSpace(v.Timeline)
	v.ClearanceLevel = strings.TrimSpace(v.ClearanceLevel)
	v.Message = sanitizeText(v.Message)
	return v
}

// normalizeEmail lowercases the domain only; the local part is case-sensitive.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// IsBot reports whether the honeypot field was filled in.
func IsBot(v FormValues) bool {
	return strings.TrimSpace(v.Website) != ""
}

// Lead is a validated submission ready for delivery.
type Lead struct {
	ID             string         `json:"id"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	Organization   string         `json:"organization"`
	Title          string         `json:"title"`
	ProjectType    ProjectType    `json:"projectType,omitempty"`
	Timeline       Timeline       `json:"timeline,omitempty"`
	ClearanceLevel ClearanceLevel `json:"clearanceLevel,omitempty"`
	Message        string         `json:"message"`
	Consent        bool           `json:"consent"`
	SubmittedAt    time.Time      `json:"submittedAt"`
}

// FullName joins first and last name.
func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// Category is the analytics category for the lead.
func (l *Lead) Category() string {
	if l.ProjectType == "" {
		return "unspecified"
	}
	return string(l.ProjectType)
}

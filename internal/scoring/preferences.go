package scoring

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidPreferences marks a preference value outside its declared set.
var ErrInvalidPreferences = errors.New("invalid preferences")

type SystemType string

const (
	SystemBlackBoxAPI  SystemType = "black_box_api"
	SystemDirectAccess SystemType = "direct_access"
	SystemOther        SystemType = "other"
)

type RAGMode string

const (
	RAGYes     RAGMode = "yes"
	RAGNo      RAGMode = "no"
	RAGUnknown RAGMode = "unknown"
)

type RequestVolume string

const (
	VolumeLow    RequestVolume = "low"
	VolumeMedium RequestVolume = "medium"
	VolumeHigh   RequestVolume = "high"
)

type RiskLevel string

const (
	RiskVeryLow RiskLevel = "very_low"
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
)

type InteractionType string

const (
	InteractionGeneralChat       InteractionType = "general_chat"
	InteractionContentGeneration InteractionType = "content_generation"
	InteractionCodeGeneration    InteractionType = "code_generation"
	InteractionDataAnalysis      InteractionType = "data_analysis"
	InteractionExpertAdvice      InteractionType = "expert_advice"
	InteractionCustomerService   InteractionType = "customer_service"
)

// Display labels double as accepted input spellings.
var (
	systemTypeLabels = map[SystemType][]string{
		SystemBlackBoxAPI:  {"Black Box API", "api"},
		SystemDirectAccess: {"Direct Access", "self-hosted"},
		SystemOther:        {"Other"},
	}
	ragModeLabels = map[RAGMode][]string{
		RAGYes:     {"Yes", "true"},
		RAGNo:      {"No", "false"},
		RAGUnknown: {"Unknown", "not sure"},
	}
	requestVolumeLabels = map[RequestVolume][]string{
		VolumeLow:    {"Low"},
		VolumeMedium: {"Medium"},
		VolumeHigh:   {"High"},
	}
	riskLevelLabels = map[RiskLevel][]string{
		RiskVeryLow: {"Very Low"},
		RiskLow:     {"Low"},
		RiskMedium:  {"Medium"},
		RiskHigh:    {"High"},
	}
	interactionTypeLabels = map[InteractionType][]string{
		InteractionGeneralChat:       {"General chat", "General chat/conversation"},
		InteractionContentGeneration: {"Content generation"},
		InteractionCodeGeneration:    {"Code generation"},
		InteractionDataAnalysis:      {"Data analysis"},
		InteractionExpertAdvice:      {"Expert advice"},
		InteractionCustomerService:   {"Customer service"},
	}
)

var (
	systemTypes      = buildLookup(systemTypeLabels)
	ragModes         = buildLookup(ragModeLabels)
	requestVolumes   = buildLookup(requestVolumeLabels)
	riskLevels       = buildLookup(riskLevelLabels)
	interactionTypes = buildLookup(interactionTypeLabels)
)

// Ordered value lists, used for validation and deterministic iteration.
var (
	AllRequestVolumes   = []RequestVolume{VolumeLow, VolumeMedium, VolumeHigh}
	AllRiskLevels       = []RiskLevel{RiskVeryLow, RiskLow, RiskMedium, RiskHigh}
	AllInteractionTypes = []InteractionType{
		InteractionGeneralChat, InteractionContentGeneration, InteractionCodeGeneration,
		InteractionDataAnalysis, InteractionExpertAdvice, InteractionCustomerService,
	}
)

func ParseSystemType(s string) (SystemType, error) {
	return parseEnum("system type", s, systemTypes)
}

func ParseRAGMode(s string) (RAGMode, error) {
	return parseEnum("rag mode", s, ragModes)
}

func ParseRequestVolume(s string) (RequestVolume, error) {
	return parseEnum("request volume", s, requestVolumes)
}

func ParseRiskLevel(s string) (RiskLevel, error) {
	return parseEnum("risk level", s, riskLevels)
}

func ParseInteractionType(s string) (InteractionType, error) {
	return parseEnum("interaction type", s, interactionTypes)
}

func (v SystemType) Label() string      { return label(v, systemTypeLabels) }
func (v RAGMode) Label() string         { return label(v, ragModeLabels) }
func (v RequestVolume) Label() string   { return label(v, requestVolumeLabels) }
func (v RiskLevel) Label() string       { return label(v, riskLevelLabels) }
func (v InteractionType) Label() string { return label(v, interactionTypeLabels) }

// Preferences is one user's stated deployment profile.
type Preferences struct {
	SystemType       SystemType        `json:"system_type"`
	RAGEnabled       RAGMode           `json:"rag_enabled"`
	RequestVolume    RequestVolume     `json:"request_volume"`
	RiskLevel        RiskLevel         `json:"risk_level"`
	InteractionTypes []InteractionType `json:"interaction_types"`
}

// Validate rejects any field outside its declared set. An empty interaction
// set is valid and contributes nothing to the score.
func (p Preferences) Validate() error {
	if _, ok := systemTypeLabels[p.SystemType]; !ok {
		return invalid("system type", string(p.SystemType))
	}
	if _, ok := ragModeLabels[p.RAGEnabled]; !ok {
		return invalid("rag mode", string(p.RAGEnabled))
	}
	if _, ok := requestVolumeLabels[p.RequestVolume]; !ok {
		return invalid("request volume", string(p.RequestVolume))
	}
	if _, ok := riskLevelLabels[p.RiskLevel]; !ok {
		return invalid("risk level", string(p.RiskLevel))
	}
	for _, it := range p.InteractionTypes {
		if _, ok := interactionTypeLabels[it]; !ok {
			return invalid("interaction type", string(it))
		}
	}
	return nil
}

// uniqueInteractions returns the interaction set without repeats, first
// occurrence order.
func (p Preferences) uniqueInteractions() []InteractionType {
	seen := make(map[InteractionType]bool, len(p.InteractionTypes))
	out := make([]InteractionType, 0, len(p.InteractionTypes))
	for _, it := range p.InteractionTypes {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

// RawPreferences is the loosely typed form submitted by forms and the CLI.
type RawPreferences struct {
	SystemType       string   `json:"system_type"`
	RAGEnabled       string   `json:"rag_enabled"`
	RequestVolume    string   `json:"request_volume"`
	RiskLevel        string   `json:"risk_level"`
	InteractionTypes []string `json:"interaction_types"`
}

// Parse converts every field, failing on the first unknown value.
func (r RawPreferences) Parse() (Preferences, error) {
	var p Preferences
	var err error
	if p.SystemType, err = ParseSystemType(r.SystemType); err != nil {
		return Preferences{}, err
	}
	if p.RAGEnabled, err = ParseRAGMode(r.RAGEnabled); err != nil {
		return Preferences{}, err
	}
	if p.RequestVolume, err = ParseRequestVolume(r.RequestVolume); err != nil {
		return Preferences{}, err
	}
	if p.RiskLevel, err = ParseRiskLevel(r.RiskLevel); err != nil {
		return Preferences{}, err
	}
	for _, s := range r.InteractionTypes {
		it, err := ParseInteractionType(s)
		if err != nil {
			return Preferences{}, err
		}
		p.InteractionTypes = append(p.InteractionTypes, it)
	}
	p.InteractionTypes = p.uniqueInteractions()
	return p, nil
}

func invalid(kind, value string) error {
	return fmt.Errorf("%w: unknown %s %q", ErrInvalidPreferences, kind, value)
}

func parseEnum[T ~string](kind, s string, lookup map[string]T) (T, error) {
	if v, ok := lookup[foldKey(s)]; ok {
		return v, nil
	}
	var zero T
	return zero, invalid(kind, s)
}

func buildLookup[T ~string](labels map[T][]string) map[string]T {
	lookup := make(map[string]T)
	for v, names := range labels {
		lookup[foldKey(string(v))] = v
		for _, n := range names {
			lookup[foldKey(n)] = v
		}
	}
	return lookup
}

func label[T ~string](v T, labels map[T][]string) string {
	if names := labels[v]; len(names) > 0 {
		return names[0]
	}
	return string(v)
}

// foldKey drops a trailing parenthetical ("Low (<1k/day)"), case, and every
// non-alphanumeric rune.
func foldKey(s string) string {
	if i := strings.Index(s, "("); i > 0 {
		s = s[:i]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

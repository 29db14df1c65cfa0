// Package comms implements the communication scorer: per-party contact
// health, free-text urgency scoring and chronological sentiment trends for
// the emails and calls exchanged on a case.
//
// The scorer is pure: no I/O, no mutable state after construction, every
// date-relative value derived from the injected clock.  Safe for concurrent
// use.
package comms

import (
	"sort"
	"time"

	"github.com/jurisio/casebrain/internal/domain/caserecord"
	"github.com/jurisio/casebrain/internal/domain/communication"
	intcommon "github.com/jurisio/casebrain/internal/intelligence/common"
	"github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// GapThresholds bands the days since last contact for one role.
type GapThresholds struct {
	WarningDays  int
	CriticalDays int
}

// Config carries the scorer's tunables and keyword tables.  Build once at
// startup and share by reference.
type Config struct {
	// RoleThresholds maps a contact role to its gap bands.  Roles absent
	// from the map fall back to the third-party thresholds.
	RoleThresholds map[caserecord.ContactRole]GapThresholds

	// ResponsePairMaxDays bounds the inter-message gaps that count toward
	// the average response time; longer gaps are treated as new threads.
	ResponsePairMaxDays int

	// ClientWeight is the weight of a client party's score in the overall
	// mean, relative to weight 1 for every other party.
	ClientWeight float64

	// Urgency keyword tiers, matched against normalized subject+body.
	CriticalKeywords  []string
	UrgentKeywords    []string
	AttentionKeywords []string

	// Sentiment keyword sets.
	PositiveKeywords []string
	NeutralKeywords  []string
	NegativeKeywords []string
	HostileKeywords  []string
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		RoleThresholds: map[caserecord.ContactRole]GapThresholds{
			caserecord.RoleClient:     {WarningDays: 7, CriticalDays: 14},
			caserecord.RoleAdverse:    {WarningDays: 14, CriticalDays: 30},
			caserecord.RoleWitness:    {WarningDays: 21, CriticalDays: 45},
			caserecord.RoleThirdParty: {WarningDays: 14, CriticalDays: 30},
		},
		ResponsePairMaxDays: 30,
		ClientWeight:        2,

		CriticalKeywords: []string{
			"urgent", "immédiat", "mise en demeure", "dernier délai",
			"saisie", "astreinte", "expulsion", "référé",
		},
		UrgentKeywords: []string{
			"délai", "échéance", "audience", "convocation", "rappel",
			"sans réponse", "relance",
		},
		AttentionKeywords: []string{
			"question", "attente", "dossier", "suite", "confirmation",
			"rendez-vous",
		},

		PositiveKeywords: []string{
			"merci", "accord", "parfait", "satisfait", "content",
			"excellent", "bonne nouvelle", "réglé",
		},
		NeutralKeywords: []string{
			"bien reçu", "information", "transmis", "annexe", "veuillez",
			"ci-joint",
		},
		NegativeKeywords: []string{
			"déçu", "inacceptable", "retard", "problème", "erreur",
			"mécontent", "regrette", "sans réponse",
		},
		HostileKeywords: []string{
			"plainte", "avocat adverse", "poursuivre", "scandaleux",
			"menace", "tribunal", "ordre des avocats", "dénoncer",
		},
	}
}

// Scorer evaluates the communication health of a case.
type Scorer struct {
	cfg   Config
	clock common.Clock

	critical  []string
	urgent    []string
	attention []string
	positive  []string
	neutral   []string
	negative  []string
	hostile   []string
}

// NewScorer constructs a Scorer.  A nil clock falls back to the system clock.
func NewScorer(cfg Config, clock common.Clock) *Scorer {
	if clock == nil {
		clock = common.NewSystemClock()
	}
	def := DefaultConfig()
	if len(cfg.RoleThresholds) == 0 {
		cfg.RoleThresholds = def.RoleThresholds
	}
	if cfg.ResponsePairMaxDays <= 0 {
		cfg.ResponsePairMaxDays = def.ResponsePairMaxDays
	}
	if cfg.ClientWeight <= 0 {
		cfg.ClientWeight = def.ClientWeight
	}
	if len(cfg.CriticalKeywords) == 0 {
		cfg.CriticalKeywords = def.CriticalKeywords
	}
	if len(cfg.UrgentKeywords) == 0 {
		cfg.UrgentKeywords = def.UrgentKeywords
	}
	if len(cfg.AttentionKeywords) == 0 {
		cfg.AttentionKeywords = def.AttentionKeywords
	}
	if len(cfg.PositiveKeywords) == 0 {
		cfg.PositiveKeywords = def.PositiveKeywords
	}
	if len(cfg.NeutralKeywords) == 0 {
		cfg.NeutralKeywords = def.NeutralKeywords
	}
	if len(cfg.NegativeKeywords) == 0 {
		cfg.NegativeKeywords = def.NegativeKeywords
	}
	if len(cfg.HostileKeywords) == 0 {
		cfg.HostileKeywords = def.HostileKeywords
	}
	return &Scorer{
		cfg:       cfg,
		clock:     clock,
		critical:  normalizeAll(cfg.CriticalKeywords),
		urgent:    normalizeAll(cfg.UrgentKeywords),
		attention: normalizeAll(cfg.AttentionKeywords),
		positive:  normalizeAll(cfg.PositiveKeywords),
		neutral:   normalizeAll(cfg.NeutralKeywords),
		negative:  normalizeAll(cfg.NegativeKeywords),
		hostile:   normalizeAll(cfg.HostileKeywords),
	}
}

func normalizeAll(keywords []string) []string {
	out := make([]string, len(keywords))
	for i, k := range keywords {
		out[i] = intcommon.NormalizeText(k)
	}
	return out
}

// Per-party base scores by gap status.  Volume adds up to volumeBonusCap on
// top, clamped to 100.
const (
	scoreAbsent   = 10
	scoreCritical = 30
	scoreWarning  = 60
	scoreOK       = 90

	volumeBonusCap  = 10
	overallFallback = 50
)

// ScoreHealth evaluates the communication state of a case: one PartyHealth
// per contact, the average response delay across the whole exchange, and an
// overall score in [0,100] that weights the client parties ClientWeight
// times against everyone else.  No contacts yields an empty party list and
// the fallback overall score.
func (s *Scorer) ScoreHealth(
	caseID common.ID,
	messages []communication.Message,
	contacts []caserecord.CaseContact,
) *brain.CommunicationHealth {
	now := s.clock.Now()

	health := &brain.CommunicationHealth{
		CaseID:           string(caseID),
		AvgResponseHours: s.averageResponseHours(messages),
	}

	var weighted []intcommon.Weighted
	for _, contact := range contacts {
		party := s.scoreParty(contact, messages, now)
		health.Parties = append(health.Parties, party)

		weight := 1.0
		if contact.Role == caserecord.RoleClient {
			weight = s.cfg.ClientWeight
		}
		weighted = append(weighted, intcommon.Weighted{Score: party.Score, Weight: weight})
	}
	health.OverallScore = intcommon.WeightedMean(weighted, overallFallback)
	return health
}

// scoreParty filters the case's messages down to one contact and bands the
// resulting gap against the contact's role thresholds.
func (s *Scorer) scoreParty(
	contact caserecord.CaseContact,
	messages []communication.Message,
	now time.Time,
) brain.PartyHealth {
	party := brain.PartyHealth{
		ContactID: string(contact.ContactID),
		Name:      contact.Name,
		Role:      string(contact.Role),
	}

	var last time.Time
	for i := range messages {
		if !messages[i].InvolvesContact(contact.Email, contact.Phone) {
			continue
		}
		party.MessageCount++
		if messages[i].Timestamp.After(last) {
			last = messages[i].Timestamp
		}
	}

	if party.MessageCount == 0 {
		party.Status = brain.PartyAbsent
		party.Score = scoreAbsent
		return party
	}

	lastCopy := last
	party.LastContact = &lastCopy
	party.DaysSince = intcommon.DaysBetween(last, now)

	thresholds := s.thresholdsFor(contact.Role)
	switch {
	case party.DaysSince > thresholds.CriticalDays:
		party.Status = brain.PartyCritical
		party.Score = scoreCritical
	case party.DaysSince > thresholds.WarningDays:
		party.Status = brain.PartyWarning
		party.Score = scoreWarning
	default:
		party.Status = brain.PartyOK
		party.Score = scoreOK
	}

	bonus := float64(party.MessageCount)
	if bonus > volumeBonusCap {
		bonus = volumeBonusCap
	}
	party.Score = intcommon.Clamp(party.Score + bonus)
	return party
}

func (s *Scorer) thresholdsFor(role caserecord.ContactRole) GapThresholds {
	if t, ok := s.cfg.RoleThresholds[role]; ok {
		return t
	}
	return s.cfg.RoleThresholds[caserecord.RoleThirdParty]
}

// averageResponseHours pairs chronologically adjacent messages and averages
// the gaps shorter than ResponsePairMaxDays.  Fewer than two messages, or no
// gap under the cap, yields 0.
func (s *Scorer) averageResponseHours(messages []communication.Message) float64 {
	if len(messages) < 2 {
		return 0
	}
	sorted := make([]communication.Message, len(messages))
	copy(sorted, messages)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	maxGap := time.Duration(s.cfg.ResponsePairMaxDays) * 24 * time.Hour
	var total time.Duration
	var pairs int
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].Timestamp.Sub(sorted[i-1].Timestamp)
		if gap <= 0 || gap >= maxGap {
			continue
		}
		total += gap
		pairs++
	}
	if pairs == 0 {
		return 0
	}
	return total.Hours() / float64(pairs)
}

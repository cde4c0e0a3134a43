// Package scoring implements the priority model for academic tasks.
// Priority is a pure function of (hours until due, points, type, title):
// the same inputs always produce the same score, so alerts can be
// re-computed across runs without hidden state.
package scoring

import (
	"fmt"
	"math"
	"strings"
)

// TaskType classifies a task for impact and risk weighting.
type TaskType string

const (
	TypeExam       TaskType = "exam"
	TypeMidterm    TaskType = "midterm"
	TypeFinal      TaskType = "final"
	TypeProject    TaskType = "project"
	TypePaper      TaskType = "paper"
	TypeQuiz       TaskType = "quiz"
	TypeProblemSet TaskType = "problem_set"
	TypeAssignment TaskType = "assignment"
	TypeLab        TaskType = "lab"
	TypeDiscussion TaskType = "discussion"
	TypeReading    TaskType = "reading"
	TypeOther      TaskType = "other"
)

// Label buckets a score for display and embed coloring.
type Label string

const (
	LabelCritical Label = "critical"
	LabelHigh     Label = "high"
	LabelMedium   Label = "medium"
	LabelLow      Label = "low"
)

// Priority is the full scoring breakdown for one task.
type Priority struct {
	Score   int      // 0-100 blended priority
	Urgency int      // 0-100 from time until due
	Impact  int      // 0-100 from points and type
	Risk    int      // 0-100 from type alone
	Label   Label
	Reasons []string // display order
}

// typeWeights encodes how much a task type matters. Exams dominate;
// readings barely register.
var typeWeights = map[TaskType]int{
	TypeExam:       100,
	TypeMidterm:    100,
	TypeFinal:      100,
	TypeProject:    85,
	TypePaper:      80,
	TypeQuiz:       70,
	TypeProblemSet: 65,
	TypeAssignment: 60,
	TypeLab:        55,
	TypeDiscussion: 40,
	TypeReading:    30,
	TypeOther:      50,
}

// typeRule maps title keywords to a type. Rules are evaluated in order and
// the first match wins, so more specific types must come first. Matching is
// substring containment, not whole-word: "collaborate" matches "lab". That
// looseness is intentional and kept for output compatibility.
type typeRule struct {
	Type     TaskType
	Keywords []string
}

var typeRules = []typeRule{
	{TypeExam, []string{"exam", "midterm", "final"}},
	{TypeQuiz, []string{"quiz"}},
	{TypeProject, []string{"project", "capstone"}},
	{TypePaper, []string{"paper", "essay", "report", "thesis"}},
	{TypeProblemSet, []string{"problem set", "pset", "homework", "hw"}},
	{TypeLab, []string{"lab", "laboratory"}},
	{TypeDiscussion, []string{"discussion", "forum", "post"}},
	{TypeReading, []string{"reading", "read chapter"}},
}

// DetectType infers a task type from its title. Keyword rules run first;
// if none match, a known explicit type is used, else other.
func DetectType(title string, explicit TaskType) TaskType {
	lower := strings.ToLower(title)
	for _, rule := range typeRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Type
			}
		}
	}
	if _, ok := typeWeights[explicit]; ok {
		return explicit
	}
	return TypeOther
}

// Weight returns the impact/risk weight for a type, defaulting to the
// "other" weight for unknown types.
func Weight(tt TaskType) int {
	if w, ok := typeWeights[tt]; ok {
		return w
	}
	return typeWeights[TypeOther]
}

// Urgency maps hours-until-due onto a fixed step curve. The breakpoints
// encode the product's risk tolerance and must not drift. nil means no due
// date, which scores low but not zero.
func Urgency(hoursUntilDue *float64) int {
	if hoursUntilDue == nil {
		return 20
	}
	h := *hoursUntilDue
	switch {
	case h < 0:
		return 100 // overdue
	case h <= 6:
		return 100
	case h <= 12:
		return 95
	case h <= 24:
		return 90
	case h <= 48:
		return 75
	case h <= 72:
		return 60
	case h <= 168:
		return 40
	case h <= 336:
		return 25
	default:
		return 10
	}
}

// Impact blends the type weight with a points discount. Unknown or zero
// points apply no discount.
func Impact(pointsPossible *float64, tt TaskType) int {
	weight := Weight(tt)
	if pointsPossible == nil || *pointsPossible <= 0 {
		return weight
	}
	p := *pointsPossible
	var factor float64
	switch {
	case p >= 100:
		factor = 1.0
	case p >= 50:
		factor = 0.9
	case p >= 25:
		factor = 0.8
	case p >= 10:
		factor = 0.7
	default:
		factor = 0.6
	}
	return int(float64(weight) * factor)
}

// Calculate produces the full priority breakdown for a task. When the type
// is generic (assignment/other) and a title is present, the title keywords
// refine the type before weighting.
func Calculate(hoursUntilDue, pointsPossible *float64, tt TaskType, title string) Priority {
	if (tt == TypeAssignment || tt == TypeOther || tt == "") && title != "" {
		tt = DetectType(title, tt)
	}

	urgency := Urgency(hoursUntilDue)
	impact := Impact(pointsPossible, tt)
	risk := Weight(tt)

	// Urgency carries half the blend.
	score := int(math.Round(float64(urgency)*0.5 + float64(impact)*0.3 + float64(risk)*0.2))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	var label Label
	switch {
	case score >= 90:
		label = LabelCritical
	case score >= 70:
		label = LabelHigh
	case score >= 45:
		label = LabelMedium
	default:
		label = LabelLow
	}

	// Reason order is display order. At most one due-date reason.
	var reasons []string
	if hoursUntilDue != nil {
		h := *hoursUntilDue
		switch {
		case h < 0:
			reasons = append(reasons, "⚠️ Overdue")
		case h <= 24:
			reasons = append(reasons, fmt.Sprintf("⏰ Due in %d hours", int(h)))
		case h <= 72:
			reasons = append(reasons, fmt.Sprintf("📅 Due in %d days", int(h/24)))
		}
	}
	switch tt {
	case TypeExam, TypeMidterm, TypeFinal:
		reasons = append(reasons, "📝 Exam/Test")
	case TypeProject:
		reasons = append(reasons, "📊 Major Project")
	}
	if pointsPossible != nil && *pointsPossible >= 50 {
		reasons = append(reasons, fmt.Sprintf("💯 Worth %d points", int(*pointsPossible)))
	}

	return Priority{
		Score:   score,
		Urgency: urgency,
		Impact:  impact,
		Risk:    risk,
		Label:   label,
		Reasons: reasons,
	}
}

// Package heuristic scores resume text with deterministic rules. It never touches the network
// and is used both as the paywall preview and as the secondary record stored next to every
// model-generated report.
package heuristic

import (
	"fmt"
	"regexp"
	"strings"

	"resume-bot/internal/analyses"
)

// Advisory codes emitted by Score.
const (
	AdviceTooShort          = "too_short"
	AdviceTooLong           = "too_long"
	AdviceMissingMetrics    = "missing_metrics"
	AdviceMissingBullets    = "missing_bullets"
	AdviceMissingContacts   = "missing_contacts"
	AdviceMissingTechStack  = "missing_tech_stack"
	AdviceMissingLeadership = "missing_leadership"
	AdviceMissingDates      = "missing_dates"
)

// Section names reported in Result.Sections.
const (
	SectionExperience     = "experience"
	SectionEducation      = "education"
	SectionSkills         = "skills"
	SectionProjects       = "projects"
	SectionCertifications = "certifications"
)

// Prompt marks heuristic details in stored analyses.
const Prompt = "heuristic"

const (
	baseScore      = 50
	sectionBonus   = 10
	maxDensityBump = 20
	maxBulletBump  = 10
	contactBonus   = 5
	contactPenalty = 10

	minWords       = 200
	maxWords       = 1400
	minDensity     = 0.01
	minBullets     = 8
	bulletsPerStep = 5
	pointsPerStep  = 2
)

var (
	invisibleRe = regexp.MustCompile(`[\x{200B}\x{FEFF}\x{00A0}]`)
	wordRe      = regexp.MustCompile(`[A-Za-zА-Яа-яЁё0-9\-\+%$€₽]+`)
	numberRe    = regexp.MustCompile(`(\b\d{4}\b|\b\d+%|\b\d+[\.,]\d+\b|\b\d+\b)`)
	bulletRe    = regexp.MustCompile(`(?m)^[ \t]*[-•·*]`)
	contactRe   = regexp.MustCompile(`(?i)@|\+\d|https?://|linkedin\.com|github\.com|portfolio`)
	techRe      = regexp.MustCompile(`(?i)python|sql|java|js|golang|kotlin|swift|c\+\+|c#`)
	leadRe      = regexp.MustCompile(`(?i)lead|руковод|менедж|team`)
	yearRe      = regexp.MustCompile(`\b\d{4}\b`)
)

type sectionPattern struct {
	name    string
	pattern *regexp.Regexp
	// scored sections add sectionBonus to the score when present.
	scored bool
}

// Go's \b is ASCII-only, so Cyrillic keywords are delimited explicitly.
var sections = []sectionPattern{
	{name: SectionExperience, pattern: keywordRe(`опыт работы`, `опыт`, `experience`), scored: true},
	{name: SectionEducation, pattern: keywordRe(`образование`, `education`), scored: true},
	{name: SectionSkills, pattern: keywordRe(`навыки`, `skills`), scored: true},
	{name: SectionProjects, pattern: keywordRe(`проекты`, `projects?`)},
	{name: SectionCertifications, pattern: keywordRe(`сертификаты`, `certifications?`)},
}

var adviceText = map[string]string{
	AdviceTooShort:          "Резюме слишком короткое. Добавьте 3–5 пунктов на каждую роль с метриками.",
	AdviceTooLong:           "Слишком объёмно. Сожмите до 1–2 страниц, уберите неактуальные роли.",
	AdviceMissingMetrics:    "Добавьте количественные метрики: рост %, выручка, экономия времени или денег.",
	AdviceMissingBullets:    "Используйте маркированные пункты вместо сплошных абзацев.",
	AdviceMissingContacts:   "Добавьте контакты и ссылки: email, LinkedIn, GitHub или портфолио.",
	AdviceMissingTechStack:  "Техстек не виден. Вынесите ключевые технологии в раздел «Навыки».",
	AdviceMissingLeadership: "Почти нет сигналов влияния и лидерства. Добавьте проекты, где вы вели людей или инициативы.",
	AdviceMissingDates:      "Не хватает дат по ролям. Укажите период и результаты.",
}

// Advisory is a single recommendation produced by the scorer.
type Advisory struct {
	Code    string
	Message string
}

// Result is the outcome of scoring one resume text.
type Result struct {
	Score          int
	WordCount      int
	MetricsDensity float64
	Bullets        int
	HasContacts    bool
	Sections       map[string]bool
	Advisories     []Advisory
}

// Score evaluates resume text. It is a pure function of its input.
func Score(text string) Result {
	clean := invisibleRe.ReplaceAllString(text, " ")

	wordCount := len(wordRe.FindAllString(clean, -1))
	numbers := len(numberRe.FindAllString(clean, -1))
	density := float64(numbers) / float64(max(1, wordCount))
	bullets := len(bulletRe.FindAllString(clean, -1))
	contacts := contactRe.MatchString(clean)

	found := make(map[string]bool, len(sections))
	score := baseScore
	for _, s := range sections {
		ok := s.pattern.MatchString(clean)
		found[s.name] = ok
		if ok && s.scored {
			score += sectionBonus
		}
	}
	score += min(maxDensityBump, int(density*200))
	score += min(maxBulletBump, bullets/bulletsPerStep*pointsPerStep)
	if contacts {
		score += contactBonus
	} else {
		score -= contactPenalty
	}
	score = clamp(score, 0, 100)

	var codes []string
	if wordCount < minWords {
		codes = append(codes, AdviceTooShort)
	}
	if wordCount > maxWords {
		codes = append(codes, AdviceTooLong)
	}
	if density < minDensity {
		codes = append(codes, AdviceMissingMetrics)
	}
	if bullets < minBullets {
		codes = append(codes, AdviceMissingBullets)
	}
	if !contacts {
		codes = append(codes, AdviceMissingContacts)
	}
	if !techRe.MatchString(clean) {
		codes = append(codes, AdviceMissingTechStack)
	}
	if !leadRe.MatchString(clean) {
		codes = append(codes, AdviceMissingLeadership)
	}
	if !yearRe.MatchString(clean) {
		codes = append(codes, AdviceMissingDates)
	}

	advisories := make([]Advisory, 0, len(codes))
	for _, code := range codes {
		advisories = append(advisories, Advisory{Code: code, Message: adviceText[code]})
	}

	return Result{
		Score:          score,
		WordCount:      wordCount,
		MetricsDensity: density,
		Bullets:        bullets,
		HasContacts:    contacts,
		Sections:       found,
		Advisories:     advisories,
	}
}

// Has reports whether the result carries the advisory code.
func (r Result) Has(code string) bool {
	for _, a := range r.Advisories {
		if a.Code == code {
			return true
		}
	}
	return false
}

// Codes returns the advisory codes in emission order.
func (r Result) Codes() []string {
	out := make([]string, 0, len(r.Advisories))
	for _, a := range r.Advisories {
		out = append(out, a.Code)
	}
	return out
}

// Detail converts the result into the stored analysis shape.
// Findings go to Problems, advisories to Actions, found sections score 10.
func (r Result) Detail() analyses.Detail {
	findings := []string{
		fmt.Sprintf("Слов: %d", r.WordCount),
		fmt.Sprintf("Плотность метрик: %.3f", r.MetricsDensity),
		fmt.Sprintf("Буллетов: %d", r.Bullets),
	}
	if r.HasContacts {
		findings = append(findings, "Контакты найдены")
	} else {
		findings = append(findings, "Контактов не найдено")
	}

	actions := make([]string, 0, len(r.Advisories))
	for _, a := range r.Advisories {
		actions = append(actions, a.Message)
	}

	sectionScores := make(map[string]int, len(r.Sections))
	for name, ok := range r.Sections {
		if ok {
			sectionScores[name] = 10
		} else {
			sectionScores[name] = 0
		}
	}

	return analyses.Detail{
		Score:     r.Score,
		Strengths: []string{},
		Problems:  findings,
		Actions:   actions,
		Sections:  sectionScores,
		OK:        true,
		Prompt:    Prompt,
	}
}

func keywordRe(words ...string) *regexp.Regexp {
	const boundaryL = `(?:^|[^\p{L}\p{N}_])`
	const boundaryR = `(?:$|[^\p{L}\p{N}_])`
	return regexp.MustCompile(`(?i)` + boundaryL + `(?:` + strings.Join(words, "|") + `)` + boundaryR)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

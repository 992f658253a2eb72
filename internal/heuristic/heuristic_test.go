package heuristic

import (
	"reflect"
	"strings"
	"testing"
)

const strongResume = `Иван Петров
ivan@example.com | +7 900 000-00-00 | github.com/ivan

Опыт работы
- 2019–2024 Team Lead, Acme: сократил время релиза на 40%
- Руководил командой из 6 разработчиков, выручка выросла на 2.5 млн
- Внедрил CI, 120 сборок в день
- Перевёл 15 сервисов на Golang
- Снизил стоимость инфраструктуры на 30%
- Нанял 4 инженеров
- Ввёл on-call, MTTR 25 минут
- Запустил 3 продукта

Образование
- 2012–2016 МГТУ, информатика

Навыки
Go, Python, SQL, Kubernetes, Kafka`

func TestScoreShortPlainTextScenario(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("lorem ipsum dolor sit amet ", 10))
	res := Score(text)

	if res.WordCount != 50 {
		t.Fatalf("expected 50 words, got %d", res.WordCount)
	}
	if res.Score > 50 {
		t.Fatalf("expected score <= 50, got %d", res.Score)
	}
	for _, code := range []string{AdviceTooShort, AdviceMissingMetrics, AdviceMissingBullets, AdviceMissingContacts} {
		if !res.Has(code) {
			t.Fatalf("expected advisory %q in %v", code, res.Codes())
		}
	}
}

func TestScoreStrongResume(t *testing.T) {
	res := Score(strongResume)

	for _, name := range []string{SectionExperience, SectionEducation, SectionSkills} {
		if !res.Sections[name] {
			t.Fatalf("expected section %q to be found", name)
		}
	}
	if res.Sections[SectionProjects] {
		t.Fatalf("did not expect projects section")
	}
	if !res.HasContacts {
		t.Fatalf("expected contacts to be detected")
	}
	if res.Bullets < 8 {
		t.Fatalf("expected at least 8 bullets, got %d", res.Bullets)
	}
	if res.Score < 90 {
		t.Fatalf("expected high score, got %d", res.Score)
	}
	for _, code := range []string{AdviceMissingContacts, AdviceMissingBullets, AdviceMissingTechStack, AdviceMissingLeadership, AdviceMissingDates, AdviceMissingMetrics} {
		if res.Has(code) {
			t.Fatalf("unexpected advisory %q", code)
		}
	}
}

func TestScoreBounds(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		strings.Repeat("1 ", 5000),
		strings.Repeat("- 2024 100% experience education skills @ python lead\n", 400),
		strongResume,
		"\x00\x01 ошибка",
	}
	for i, in := range inputs {
		res := Score(in)
		if res.Score < 0 || res.Score > 100 {
			t.Fatalf("input %d: score %d out of range", i, res.Score)
		}
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	first := Score(strongResume)
	for i := 0; i < 5; i++ {
		next := Score(strongResume)
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, next)
		}
	}
}

func TestScoreTooLong(t *testing.T) {
	res := Score(strings.Repeat("word ", 1500))
	if !res.Has(AdviceTooLong) || res.Has(AdviceTooShort) {
		t.Fatalf("unexpected advisories: %v", res.Codes())
	}
}

func TestSectionKeywordsNeedWordBoundaries(t *testing.T) {
	res := Score("неопытный кандидат без skillset")
	if res.Sections[SectionExperience] {
		t.Fatalf("experience should not match inside another word")
	}
	if res.Sections[SectionSkills] {
		t.Fatalf("skills should not match inside another word")
	}
}

func TestDetailShape(t *testing.T) {
	detail := Score(strongResume).Detail()
	if !detail.OK {
		t.Fatalf("heuristic detail must be ok")
	}
	if detail.Prompt != Prompt {
		t.Fatalf("unexpected prompt marker %q", detail.Prompt)
	}
	if len(detail.Problems) != 4 {
		t.Fatalf("expected 4 findings, got %d", len(detail.Problems))
	}
	if detail.Sections[SectionExperience] != 10 || detail.Sections[SectionProjects] != 0 {
		t.Fatalf("unexpected section scores: %v", detail.Sections)
	}
}

func TestBulletsNeedMarker(t *testing.T) {
	paragraphs := make([]string, 10)
	for i := range paragraphs {
		paragraphs[i] = "  Worked on backend services and reviewed code with the team every week."
	}
	res := Score(strings.Join(paragraphs, "\n\n"))

	if res.Bullets != 0 {
		t.Fatalf("expected no bullets in plain paragraphs, got %d", res.Bullets)
	}
	if !res.Has(AdviceMissingBullets) {
		t.Fatalf("expected %q in %v", AdviceMissingBullets, res.Codes())
	}

	marked := Score("Опыт\n- один\n\t• два\n  * три\n· четыре\n")
	if marked.Bullets != 4 {
		t.Fatalf("expected 4 bullets, got %d", marked.Bullets)
	}
}

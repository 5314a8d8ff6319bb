package services

import (
	"regexp"
	"strconv"
	"strings"

	"certprep-platform/internal/logger"
	"certprep-platform/models"
	"certprep-platform/utils"
)

// QuestionExtractor recognizes multiple-choice blocks in raw document text.
// Strategies are tried in order and the first one that yields anything wins;
// looser patterns only run when the strict exam layout matched nothing.
type QuestionExtractor struct {
	minStemLength int
	strategies    []extractionStrategy
}

type extractionStrategy struct {
	name string
	run  func(qe *QuestionExtractor, text string) []models.ExtractedQuestion
}

func NewQuestionExtractor(minStemLength int) *QuestionExtractor {
	if minStemLength <= 0 {
		minStemLength = 12
	}
	return &QuestionExtractor{
		minStemLength: minStemLength,
		strategies: []extractionStrategy{
			{name: models.ExtractedByNumberedBlock, run: (*QuestionExtractor).extractNumberedBlocks},
			{name: models.ExtractedByLooseLabel, run: (*QuestionExtractor).extractLooseLabels},
			{name: models.ExtractedByQuestionHeading, run: (*QuestionExtractor).extractQuestionHeadings},
		},
	}
}

var (
	// Item markers: "12." or "12)" preceded by start of text or whitespace.
	numberedItemRe = regexp.MustCompile(`(?:^|\s)(\d{1,3})[.)]\s+`)
	// Strict option labels used by the primary exam layout: "A." / "A)".
	strictOptionRe = regexp.MustCompile(`(?:^|\s)([A-F])[.)]\s+`)
	// Loose option labels additionally accept "A:".
	looseOptionRe = regexp.MustCompile(`(?:^|\s)([A-F])[.):]\s*`)
	// "Question 3:" / "Q3." style headings at line start.
	questionHeadingRe = regexp.MustCompile(`(?mi)^(?:question|q)\s*#?\s*(\d{1,3})?\s*[:.)]\s*`)
	// Trailing answer key inside a block, e.g. "Answer: B".
	answerKeyRe = regexp.MustCompile(`(?i)(?:^|\s)(?:correct\s+)?answer\s*[:\-]?\s*\(?([A-F])\)?\b`)
)

// Extract runs the strategy chain over the document text and returns
// questions deduplicated by normalized stem, first occurrence winning.
func (qe *QuestionExtractor) Extract(text, certification string) []models.ExtractedQuestion {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var candidates []models.ExtractedQuestion
	for _, strategy := range qe.strategies {
		candidates = strategy.run(qe, text)
		if len(candidates) > 0 {
			logger.Debug("Question extraction strategy matched", "strategy", strategy.name, "count", len(candidates))
			break
		}
	}

	seen := make(map[string]bool, len(candidates))
	result := make([]models.ExtractedQuestion, 0, len(candidates))
	for _, q := range candidates {
		q.Certification = certification
		key := utils.NormalizeStem(q.QuestionText)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, q)
	}

	return result
}

// extractNumberedBlocks is the primary strategy for the common exam layout:
// a numbered item, a stem, and at least four options labeled sequentially
// from A. Blocks are delimited by item-marker positions rather than a single
// greedy pattern so a capture never runs past the next item.
func (qe *QuestionExtractor) extractNumberedBlocks(text string) []models.ExtractedQuestion {
	markers := numberedItemRe.FindAllStringSubmatchIndex(text, -1)
	if len(markers) == 0 {
		return nil
	}

	var questions []models.ExtractedQuestion
	for i, marker := range markers {
		blockEnd := len(text)
		if i+1 < len(markers) {
			blockEnd = markers[i+1][0]
		}
		block := text[marker[1]:blockEnd]

		q, ok := qe.parseBlock(block, strictOptionRe, 4, true)
		if !ok {
			continue
		}
		q.ExtractedBy = models.ExtractedByNumberedBlock
		q.Number, _ = strconv.Atoi(text[marker[2]:marker[3]])
		questions = append(questions, q)
	}

	return questions
}

// extractLooseLabels reuses the numbered-item boundaries but accepts "A:"
// labels, out-of-order labels and as few as two options.
func (qe *QuestionExtractor) extractLooseLabels(text string) []models.ExtractedQuestion {
	markers := numberedItemRe.FindAllStringSubmatchIndex(text, -1)
	if len(markers) == 0 {
		return nil
	}

	var questions []models.ExtractedQuestion
	for i, marker := range markers {
		blockEnd := len(text)
		if i+1 < len(markers) {
			blockEnd = markers[i+1][0]
		}
		block := text[marker[1]:blockEnd]

		q, ok := qe.parseBlock(block, looseOptionRe, 2, false)
		if !ok {
			continue
		}
		q.ExtractedBy = models.ExtractedByLooseLabel
		q.Number, _ = strconv.Atoi(text[marker[2]:marker[3]])
		questions = append(questions, q)
	}

	return questions
}

// extractQuestionHeadings handles documents that introduce items with
// "Question N" headings instead of bare numbers.
func (qe *QuestionExtractor) extractQuestionHeadings(text string) []models.ExtractedQuestion {
	markers := questionHeadingRe.FindAllStringSubmatchIndex(text, -1)
	if len(markers) == 0 {
		return nil
	}

	var questions []models.ExtractedQuestion
	for i, marker := range markers {
		blockEnd := len(text)
		if i+1 < len(markers) {
			blockEnd = markers[i+1][0]
		}
		block := text[marker[1]:blockEnd]

		q, ok := qe.parseBlock(block, looseOptionRe, 2, false)
		if !ok {
			continue
		}
		q.ExtractedBy = models.ExtractedByQuestionHeading
		if marker[2] >= 0 {
			q.Number, _ = strconv.Atoi(text[marker[2]:marker[3]])
		}
		questions = append(questions, q)
	}

	return questions
}

// parseBlock splits one item block into stem and options using option-label
// positions. A malformed block is logged and skipped, never fatal.
func (qe *QuestionExtractor) parseBlock(block string, optionRe *regexp.Regexp, minOptions int, sequential bool) (models.ExtractedQuestion, bool) {
	labels := optionRe.FindAllStringSubmatchIndex(block, -1)
	if len(labels) < minOptions {
		return models.ExtractedQuestion{}, false
	}

	rawStem := strings.Join(strings.Fields(block[:labels[0][0]]), " ")
	if len(rawStem) < qe.minStemLength {
		logger.Warn("Skipping question block with short stem", "stem_length", len(rawStem))
		return models.ExtractedQuestion{}, false
	}
	stem := finishStem(rawStem)

	var correctAnswer string
	options := make([]string, 0, len(labels))
	letters := make([]byte, 0, len(labels))
	for i, label := range labels {
		optEnd := len(block)
		if i+1 < len(labels) {
			optEnd = labels[i+1][0]
		}
		optText := block[label[1]:optEnd]

		// An answer key trailing the last option belongs to the block, not
		// the option text.
		if key := answerKeyRe.FindStringSubmatchIndex(optText); key != nil {
			correctAnswer = strings.ToUpper(optText[key[2]:key[3]])
			optText = optText[:key[0]]
		}

		optText = strings.Join(strings.Fields(optText), " ")
		if optText == "" {
			continue
		}
		options = append(options, optText)
		letters = append(letters, strings.ToUpper(block[label[2]:label[3]])[0])
	}

	options = dedupeOptions(options)
	if len(options) < minOptions || len(options) > 6 {
		logger.Warn("Skipping question block with unusable option count", "options", len(options))
		return models.ExtractedQuestion{}, false
	}

	if sequential && !labelsSequential(letters) {
		logger.Warn("Skipping question block with non-sequential option labels")
		return models.ExtractedQuestion{}, false
	}

	return models.ExtractedQuestion{
		QuestionText:  stem,
		Options:       options,
		CorrectAnswer: correctAnswer,
	}, true
}

// finishStem guarantees a collapsed stem reads as a question: a stem already
// ending in "?" is kept, a stem containing one is cut after its last
// interrogative sentence, anything else gets a generic closing question
// appended.
func finishStem(stem string) string {
	switch {
	case strings.HasSuffix(stem, "?"):
		return stem
	case strings.Contains(stem, "?"):
		return stem[:strings.LastIndex(stem, "?")+1]
	default:
		return stem + " Which of the following applies?"
	}
}

func dedupeOptions(options []string) []string {
	seen := make(map[string]bool, len(options))
	out := options[:0]
	for _, opt := range options {
		key := strings.ToLower(opt)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, opt)
	}
	return out
}

// labelsSequential reports whether option letters run A, B, C, ... without
// gaps, which the strict exam layout requires.
func labelsSequential(letters []byte) bool {
	for i, l := range letters {
		if l != byte('A'+i) {
			return false
		}
	}
	return len(letters) > 0
}

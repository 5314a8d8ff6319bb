package models

// ExtractedQuestion is a multiple-choice question recognized in raw document
// text. Options are whitespace-normalized and deduplicated; the stem is unique
// (lower-cased, trimmed) within one extraction run.
type ExtractedQuestion struct {
	QuestionText  string   `bson:"question_text" json:"question_text"`
	Options       []string `bson:"options" json:"options"`
	CorrectAnswer string   `bson:"correct_answer,omitempty" json:"correct_answer,omitempty"`
	Certification string   `bson:"certification" json:"certification"`
	ExtractedBy   string   `bson:"extracted_by" json:"extracted_by"`
	Number        int      `bson:"number,omitempty" json:"number,omitempty"`
}

// Extraction strategy tags, used for quality triage.
const (
	ExtractedByNumberedBlock   = "numbered_block"
	ExtractedByLooseLabel      = "loose_label"
	ExtractedByQuestionHeading = "question_heading"
	ExtractedByGenerated       = "generated"
)

package services

import (
	"strings"
	"testing"

	"certprep-platform/models"
)

func TestExtractInlineNumberedBlocks(t *testing.T) {
	qe := NewQuestionExtractor(12)

	text := "1) Which storage service offers eleven nines of durability A) EBS B) S3 C) EFS D) Instance Store " +
		"2) Which database is serverless and key-value based A) RDS B) Redshift C) DynamoDB D) Neptune"

	questions := qe.Extract(text, "SAA")
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}

	for i, q := range questions {
		if len(q.Options) != 4 {
			t.Errorf("question %d: expected 4 options, got %d: %v", i, len(q.Options), q.Options)
		}
		if q.ExtractedBy != models.ExtractedByNumberedBlock {
			t.Errorf("question %d: expected extraction method %s, got %s",
				i, models.ExtractedByNumberedBlock, q.ExtractedBy)
		}
		if q.Certification != "SAA" {
			t.Errorf("question %d: expected certification SAA, got %s", i, q.Certification)
		}
		if !strings.HasSuffix(q.QuestionText, "?") {
			t.Errorf("question %d: stem does not end with a question mark: %q", i, q.QuestionText)
		}
	}

	if questions[0].Number != 1 || questions[1].Number != 2 {
		t.Errorf("expected question numbers 1 and 2, got %d and %d",
			questions[0].Number, questions[1].Number)
	}
	if questions[1].Options[2] != "DynamoDB" {
		t.Errorf("expected option C of question 2 to be DynamoDB, got %q", questions[1].Options[2])
	}
}

func TestExtractKeepsExistingQuestionMark(t *testing.T) {
	qe := NewQuestionExtractor(12)

	text := "1. What does VPC stand for? A. Virtual Private Cloud B. Virtual Public Cloud C. Verified Private Connection D. Virtual Packet Channel"

	questions := qe.Extract(text, "CCP")
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if got := questions[0].QuestionText; got != "What does VPC stand for?" {
		t.Errorf("unexpected stem: %q", got)
	}
}

func TestExtractDetectsAnswerKey(t *testing.T) {
	qe := NewQuestionExtractor(12)

	text := "1) Which service stores objects rather than blocks A) EBS B) S3 C) EFS D) FSx Answer: B"

	questions := qe.Extract(text, "SAA")
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if questions[0].CorrectAnswer != "B" {
		t.Errorf("expected correct answer B, got %q", questions[0].CorrectAnswer)
	}
	if last := questions[0].Options[3]; last != "FSx" {
		t.Errorf("answer key leaked into last option: %q", last)
	}
}

func TestExtractDeduplicatesByNormalizedStem(t *testing.T) {
	qe := NewQuestionExtractor(12)

	text := "1) Which region is the default in most SDK examples A) us-east-1 B) us-west-2 C) eu-west-1 D) ap-south-1 " +
		"2) Which  Region is the DEFAULT in most sdk examples A) us-east-1 B) us-west-2 C) eu-west-1 D) ap-south-1"

	questions := qe.Extract(text, "DVA")
	if len(questions) != 1 {
		t.Fatalf("expected duplicate stems collapsed to 1 question, got %d", len(questions))
	}
	if questions[0].Number != 1 {
		t.Errorf("expected first occurrence to win, got question number %d", questions[0].Number)
	}
}

func TestExtractFallsBackToLooseLabels(t *testing.T) {
	qe := NewQuestionExtractor(12)

	// Only two options and colon labels: the strict pattern finds nothing.
	text := "1. Is Lambda billed per millisecond of execution time A: yes B: no"

	questions := qe.Extract(text, "DVA")
	if len(questions) != 1 {
		t.Fatalf("expected 1 question from fallback, got %d", len(questions))
	}
	if questions[0].ExtractedBy != models.ExtractedByLooseLabel {
		t.Errorf("expected extraction method %s, got %s",
			models.ExtractedByLooseLabel, questions[0].ExtractedBy)
	}
	if len(questions[0].Options) != 2 {
		t.Errorf("expected 2 options, got %v", questions[0].Options)
	}
}

func TestExtractQuestionHeadings(t *testing.T) {
	qe := NewQuestionExtractor(12)

	text := "Question 7: Which service provides managed Kubernetes\nA: ECS\nB: EKS\nC: Fargate\n" +
		"Question 8: Which service is a message queue\nA: SNS\nB: SQS"

	questions := qe.Extract(text, "SOA")
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	for _, q := range questions {
		if q.ExtractedBy != models.ExtractedByQuestionHeading {
			t.Errorf("expected extraction method %s, got %s",
				models.ExtractedByQuestionHeading, q.ExtractedBy)
		}
	}
	if questions[0].Number != 7 || questions[1].Number != 8 {
		t.Errorf("expected numbers 7 and 8, got %d and %d", questions[0].Number, questions[1].Number)
	}
}

func TestExtractSkipsMalformedBlocks(t *testing.T) {
	qe := NewQuestionExtractor(12)

	// First block has a stem below the minimum length, second is fine.
	text := "1) too short A) a B) b C) c D) d " +
		"2) Which compute service runs containers without servers A) EC2 B) Lightsail C) Fargate D) Outposts"

	questions := qe.Extract(text, "SAA")
	if len(questions) != 1 {
		t.Fatalf("expected malformed block skipped, got %d questions", len(questions))
	}
	if questions[0].Number != 2 {
		t.Errorf("expected surviving question number 2, got %d", questions[0].Number)
	}
}

func TestExtractEmptyText(t *testing.T) {
	qe := NewQuestionExtractor(12)
	if got := qe.Extract("   ", "SAA"); got != nil {
		t.Fatalf("expected nil for empty text, got %v", got)
	}
}

package services

import "testing"

func TestClassifyContentOverridesLocation(t *testing.T) {
	c := NewCertificationClassifier()

	got := c.Classify(
		"ccp/uploads/study-guide.pdf",
		"study-guide.pdf",
		"AWS Certified Developer Associate DVA-C02 practice questions",
	)

	if got.Code != "DVA" {
		t.Fatalf("expected DVA, got %s", got.Code)
	}
	if got.Signals.Location != "CCP" {
		t.Errorf("expected location signal CCP, got %s", got.Signals.Location)
	}
	if got.Signals.Content != "DVA" {
		t.Errorf("expected content signal DVA, got %s", got.Signals.Content)
	}
}

func TestClassifySignalPriority(t *testing.T) {
	c := NewCertificationClassifier()

	tests := []struct {
		name        string
		storageKey  string
		filename    string
		leadingText string
		want        string
	}{
		{
			name:       "location only",
			storageKey: "saa/guide.pdf",
			filename:   "guide.pdf",
			want:       "SAA",
		},
		{
			name:        "content only",
			storageKey:  "uploads/guide.pdf",
			filename:    "guide.pdf",
			leadingText: "Preparing for the Solutions Architect Associate exam",
			want:        "SAA",
		},
		{
			name:       "filename only",
			storageKey: "uploads/x.pdf",
			filename:   "developer-associate-notes.pdf",
			want:       "DVA",
		},
		{
			name:       "filename exam code",
			storageKey: "uploads/x.pdf",
			filename:   "SAP-C02_dump.pdf",
			want:       "SAP",
		},
		{
			name:        "location and content agree",
			storageKey:  "mls/guide.pdf",
			leadingText: "Machine Learning Specialty MLS-C01",
			want:        "MLS",
		},
		{
			name:        "clf exam code maps to CCP",
			leadingText: "This covers CLF-C02 objectives",
			want:        "CCP",
		},
		{
			name: "all general",
			want: "GENERAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.storageKey, tt.filename, tt.leadingText)
			if got.Code != tt.want {
				t.Errorf("Classify(%q, %q, %q) = %s, want %s",
					tt.storageKey, tt.filename, tt.leadingText, got.Code, tt.want)
			}
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	c := NewCertificationClassifier()

	inputs := [][3]string{
		{"", "", ""},
		{"///", "...", "???"},
		{"random/path/here", "notes.txt", "nothing relevant in this text"},
	}

	for _, in := range inputs {
		got := c.Classify(in[0], in[1], in[2])
		if got.Code == "" {
			t.Errorf("Classify(%q, %q, %q) returned empty code", in[0], in[1], in[2])
		}
	}
}

package entities

import "testing"

func TestJobStage_Next(t *testing.T) {
	stage := JobStageDiagnostic
	var seen []JobStage
	for {
		next, ok := stage.Next()
		if !ok {
			break
		}
		if !stage.Before(next) {
			t.Fatalf("%s must come before %s", stage, next)
		}
		seen = append(seen, next)
		stage = next
	}
	if stage != JobStageCompletion {
		t.Fatalf("expected pipeline to end at COMPLETION, got %s", stage)
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 advances, got %v", seen)
	}
	if !JobStageCompletion.Terminal() {
		t.Fatalf("COMPLETION must be terminal")
	}
}

func TestParseJobStage(t *testing.T) {
	if st, ok := ParseJobStage("TESTING"); !ok || st != JobStageTesting {
		t.Fatalf("expected TESTING, got %q %v", st, ok)
	}
	if _, ok := ParseJobStage("PAINTING"); ok {
		t.Fatalf("unknown stage must be rejected")
	}
	if JobStage("PAINTING").Index() != -1 {
		t.Fatalf("unknown stage must have index -1")
	}
}

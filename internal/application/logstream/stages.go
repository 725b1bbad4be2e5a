package logstream

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/doeshing/unlp/internal/domain"
)

// Stage is one canonical narration line.
//
// A successful run emits, in order: Initializing, ModelSelected, AnalyzingIntent,
// Dispatching, BackendProcessing, IntentDetected, TokensUsed, Elapsed, Completed.
// A failed run replaces everything after Dispatching with a single Failed line.
type Stage struct {
	Message string
	Kind    domain.LogKind
}

func Initializing() Stage {
	return Stage{Message: "Initializing request...", Kind: domain.LogInfo}
}

func ModelSelected(model domain.ModelDescriptor) Stage {
	msg := "Model: " + model.ID
	if model.Name != "" && model.Name != model.ID {
		msg = fmt.Sprintf("Model: %s (%s)", model.Name, model.ID)
	}
	return Stage{Message: msg, Kind: domain.LogInfo}
}

func AnalyzingIntent() Stage {
	return Stage{Message: "Analyzing intent...", Kind: domain.LogAgent}
}

func Dispatching() Stage {
	return Stage{Message: "Sending to backend...", Kind: domain.LogInfo}
}

func BackendProcessing() Stage {
	return Stage{Message: "Processing with AI...", Kind: domain.LogAgent}
}

func IntentDetected(intent string) Stage {
	return Stage{Message: "Intent: " + intent, Kind: domain.LogSuccess}
}

func TokensUsed(tokens int) Stage {
	return Stage{Message: "Tokens: " + humanize.Comma(int64(tokens)), Kind: domain.LogInfo}
}

func Elapsed(seconds float64) Stage {
	return Stage{Message: "Time: " + strconv.FormatFloat(seconds, 'f', -1, 64) + "s", Kind: domain.LogInfo}
}

func Completed() Stage {
	return Stage{Message: "Completed successfully!", Kind: domain.LogSuccess}
}

func Failed(message string) Stage {
	return Stage{Message: "Failed: " + message, Kind: domain.LogError}
}

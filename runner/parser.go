package runner

import (
	"bufio"
	"bytes"
	"encoding/json"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"
	"github.com/gradeops/autograder/types"
)

// OutcomeEvent represents one line of the test harness's JSON event stream.
// Name and Stdout keep the raw JSON text of their values: the grading
// contract operates on the rendered form (quote delimiters and escape
// sequences intact), so those fields are decoded explicitly by the
// classifier rather than by the JSON decoder.
type OutcomeEvent struct {
	Type   string          `json:"type"`
	Event  string          `json:"event"`
	Name   json.RawMessage `json:"name"`
	Stdout json.RawMessage `json:"stdout"`
}

// OutputParser extracts outcome events from raw suite output
type OutputParser interface {
	// Parse scans line-delimited output and returns the events it contains.
	// Lines that do not parse as events are dropped silently.
	Parse(output []byte) []OutcomeEvent
}

// OutcomeClassifier decides whether an event is a completed test
type OutcomeClassifier interface {
	// Classify returns the TestOutcome an event represents, or nil when the
	// event is not a completed test.
	Classify(event OutcomeEvent) *types.TestOutcome
}

// outputParser implements OutputParser
type outputParser struct {
	log log.Logger
}

// NewOutputParser creates a new output parser
func NewOutputParser(logger log.Logger) OutputParser {
	if logger == nil {
		logger = log.Root()
	}
	return &outputParser{log: logger}
}

func (p *outputParser) Parse(output []byte) []OutcomeEvent {
	var events []OutcomeEvent

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var event OutcomeEvent
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		p.log.Warn("Stopped scanning suite output early", "error", err)
	}

	return events
}

// eventClassifier implements OutcomeClassifier
type eventClassifier struct {
	log log.Logger
}

// NewOutcomeClassifier creates a new outcome classifier
func NewOutcomeClassifier(logger log.Logger) OutcomeClassifier {
	if logger == nil {
		logger = log.Root()
	}
	return &eventClassifier{log: logger}
}

// Classify keeps exactly the events with type "test" and any event other
// than "started". The test passed only when the event is "ok"; every other
// terminal event (failed, ignored, ...) counts against the score.
func (c *eventClassifier) Classify(event OutcomeEvent) *types.TestOutcome {
	if event.Type != EventTypeTest || event.Event == EventStarted {
		return nil
	}

	outcome := &types.TestOutcome{
		Name:   stripQuotes(rawText(event.Name)),
		Status: types.TestStatusFail,
	}

	if event.Event == EventOK {
		outcome.Status = types.TestStatusPass
		return outcome
	}

	outcome.Diagnostic = c.decodeDiagnostic(event.Stdout)
	return outcome
}

// decodeDiagnostic recovers readable failure output from the raw JSON text
// of a stdout field. Missing or null stdout yields an empty diagnostic. A
// malformed escape keeps the raw text instead of failing the run.
func (c *eventClassifier) decodeDiagnostic(raw json.RawMessage) string {
	text := rawText(raw)
	if text == "" {
		return ""
	}

	text = stripQuotes(text)
	decoded, err := Unescape(text)
	if err != nil {
		c.log.Warn("Malformed escape in test output, keeping raw text", "error", err)
		decoded = text
	}

	return stripansi.Strip(decoded)
}

// rawText renders a raw JSON value as text, with absent and null values
// reading as empty.
func rawText(raw json.RawMessage) string {
	text := string(raw)
	if text == "null" {
		return ""
	}
	return text
}

// stripQuotes removes the quote delimiters from a JSON-rendered string
// value. Non-string values pass through unchanged.
func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

package registry

import (
	"github.com/dialvox/ivrflow/pkg/models"
)

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

// builtinKinds returns the node kinds every deployment ships with.
func builtinKinds() []*models.RegisteredNodeKind {
	return []*models.RegisteredNodeKind{
		{
			Kind:        models.NodeKindStart,
			Name:        "Start",
			Description: "Entry point of the call flow",
			Schema: &models.JSONSchema{
				Type:  "object",
				Title: "Start Configuration",
			},
		},
		{
			Kind:        models.NodeKindPlayAudio,
			Name:        "Play Audio",
			Description: "Plays an uploaded audio file to the caller",
			Schema: &models.JSONSchema{
				Type:     "object",
				Title:    "Play Audio Configuration",
				Required: []string{"audio_file"},
				Properties: map[string]*models.Property{
					"audio_file": {
						Type:        "string",
						Description: "Name of the uploaded audio asset to play",
						MinLength:   intPtr(1),
					},
					"loop": {
						Type:        "integer",
						Description: "How many times to repeat the audio",
						Default:     1,
						Minimum:     floatPtr(1),
					},
					"barge_in": {
						Type:        "boolean",
						Description: "Whether DTMF input interrupts playback",
						Default:     true,
					},
				},
			},
		},
		{
			Kind:        models.NodeKindCollectDigits,
			Name:        "Collect Digits",
			Description: "Plays a prompt and collects DTMF digits from the caller",
			Schema: &models.JSONSchema{
				Type:     "object",
				Title:    "Collect Digits Configuration",
				Required: []string{"max_digits"},
				Properties: map[string]*models.Property{
					"prompt": {
						Type:        "string",
						Description: "Audio asset played before collection starts",
					},
					"max_digits": {
						Type:        "integer",
						Description: "Maximum number of digits to collect",
						Minimum:     floatPtr(1),
						Maximum:     floatPtr(32),
					},
					"terminator": {
						Type:        "string",
						Description: "Digit that ends collection early",
						Enum:        []any{"#", "*", ""},
						Default:     "#",
					},
					"timeout_seconds": {
						Type:        "integer",
						Description: "Seconds to wait for the first digit",
						Default:     5,
						Minimum:     floatPtr(1),
					},
					"retries": {
						Type:        "integer",
						Description: "How many times to replay the prompt on timeout",
						Default:     3,
						Minimum:     floatPtr(0),
					},
				},
			},
		},
		{
			Kind:        models.NodeKindTransfer,
			Name:        "Transfer",
			Description: "Transfers the call to an extension or external number",
			Schema: &models.JSONSchema{
				Type:     "object",
				Title:    "Transfer Configuration",
				Required: []string{"destination"},
				Properties: map[string]*models.Property{
					"destination": {
						Type:        "string",
						Description: "SIP extension or E.164 number to transfer to",
						MinLength:   intPtr(1),
					},
					"caller_id": {
						Type:        "string",
						Description: "Caller ID presented to the transfer target",
					},
					"timeout_seconds": {
						Type:        "integer",
						Description: "Seconds to ring the target before giving up",
						Default:     30,
						Minimum:     floatPtr(1),
					},
				},
			},
		},
		{
			Kind:        models.NodeKindHangUp,
			Name:        "Hang Up",
			Description: "Ends the call",
			Schema: &models.JSONSchema{
				Type:  "object",
				Title: "Hang Up Configuration",
			},
		},
		{
			Kind:        models.NodeKindBranch,
			Name:        "Branch",
			Description: "Routes the call based on a collected variable",
			Schema: &models.JSONSchema{
				Type:     "object",
				Title:    "Branch Configuration",
				Required: []string{"variable"},
				Properties: map[string]*models.Property{
					"variable": {
						Type:        "string",
						Description: "Session variable whose value selects the outgoing edge",
						MinLength:   intPtr(1),
					},
					"default": {
						Type:        "string",
						Description: "Edge condition used when no case matches",
					},
				},
			},
		},
		{
			Kind:        models.NodeKindVoicemail,
			Name:        "Voicemail",
			Description: "Records a message from the caller",
			Schema: &models.JSONSchema{
				Type:     "object",
				Title:    "Voicemail Configuration",
				Required: []string{"greeting_file"},
				Properties: map[string]*models.Property{
					"greeting_file": {
						Type:        "string",
						Description: "Audio asset played before recording starts",
						MinLength:   intPtr(1),
					},
					"max_duration_seconds": {
						Type:        "integer",
						Description: "Longest recording accepted",
						Default:     120,
						Minimum:     floatPtr(5),
					},
					"transcribe": {
						Type:        "boolean",
						Description: "Whether to queue the recording for transcription",
						Default:     false,
					},
				},
			},
		},
	}
}

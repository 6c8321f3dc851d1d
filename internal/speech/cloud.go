package speech

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	gspeech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"github.com/abhisek/feelio/internal/logger"
)

// CloudConfig configures Google Cloud Speech-to-Text.
type CloudConfig struct {
	Language   string
	SampleRate int

	// CredentialsFile is a service account key. Empty falls back to
	// GOOGLE_APPLICATION_CREDENTIALS_JSON, then application default
	// credentials.
	CredentialsFile string
}

// recognizeClient is the part of the Speech client CloudTranscriber uses.
type recognizeClient interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
	Close() error
}

// CloudTranscriber sends recorded PCM to Google Cloud Speech-to-Text.
type CloudTranscriber struct {
	client recognizeClient
	cfg    CloudConfig
	log    *logger.Logger
}

// NewCloudTranscriber dials the Speech API.
func NewCloudTranscriber(ctx context.Context, cfg CloudConfig, log *logger.Logger) (*CloudTranscriber, error) {
	if log == nil {
		log = logger.Nop()
	}
	c, err := gspeech.NewClient(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return newCloudTranscriber(c, cfg, log), nil
}

func newCloudTranscriber(c recognizeClient, cfg CloudConfig, log *logger.Logger) *CloudTranscriber {
	if cfg.Language == "" {
		cfg.Language = "id-ID"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CloudTranscriber{client: c, cfg: cfg, log: log.With("service", "speech")}
}

func clientOptions(cfg CloudConfig) []option.ClientOption {
	if cfg.CredentialsFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}
	}
	if js := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")); js != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(js))}
	}
	return nil
}

func (t *CloudTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	start := time.Now()
	resp, err := t.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            int32(t.cfg.SampleRate),
			AudioChannelCount:          1,
			LanguageCode:               t.cfg.Language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		t.log.Warn("speech recognize failed", "error", err)
		return "", fmt.Errorf("speech recognize: %w", err)
	}

	text := transcript(resp)
	t.log.Debug("speech recognized", "bytes", len(audio), "chars", len(text), "latency", time.Since(start))
	return text, nil
}

func (t *CloudTranscriber) Close() error {
	return t.client.Close()
}

// transcript joins the top alternative of every result.
func transcript(resp *speechpb.RecognizeResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if s := strings.TrimSpace(alts[0].GetTranscript()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

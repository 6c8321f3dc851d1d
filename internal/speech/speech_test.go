package speech

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
)

type fakeCapture struct {
	audio []byte
	err   error
}

func (c *fakeCapture) Stop() ([]byte, error) { return c.audio, c.err }

type fakeRecorder struct {
	capture *fakeCapture
	err     error
	starts  int
}

func (r *fakeRecorder) Start(context.Context) (Capture, error) {
	r.starts++
	if r.err != nil {
		return nil, r.err
	}
	return r.capture, nil
}

type fakeTranscriber struct {
	got  []byte
	text string
	err  error
}

func (t *fakeTranscriber) Transcribe(_ context.Context, audio []byte) (string, error) {
	t.got = audio
	return t.text, t.err
}

func TestDictation_StartStop(t *testing.T) {
	rec := &fakeRecorder{capture: &fakeCapture{audio: []byte{1, 2, 3, 4}}}
	tr := &fakeTranscriber{text: "  dia merasa sedih  "}
	d := NewDictation(rec, tr, nil)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !d.Recording() {
		t.Fatal("expected Recording after Start")
	}
	if err := d.Start(context.Background()); !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("second Start = %v", err)
	}

	text, err := d.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if text != "dia merasa sedih" {
		t.Errorf("transcript = %q", text)
	}
	if len(tr.got) != 4 {
		t.Errorf("transcriber got %d bytes", len(tr.got))
	}
	if d.Recording() {
		t.Error("still recording after Stop")
	}
	if _, err := d.Stop(context.Background()); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Stop when idle = %v", err)
	}
}

func TestDictation_SilenceSkipsTranscription(t *testing.T) {
	tr := &fakeTranscriber{text: "never"}
	d := NewDictation(&fakeRecorder{capture: &fakeCapture{}}, tr, nil)

	d.Start(context.Background())
	text, err := d.Stop(context.Background())
	if err != nil || text != "" {
		t.Fatalf("Stop = %q, %v", text, err)
	}
	if tr.got != nil {
		t.Error("transcriber called for empty audio")
	}
}

func TestDictation_Errors(t *testing.T) {
	boom := errors.New("boom")

	d := NewDictation(&fakeRecorder{err: boom}, &fakeTranscriber{}, nil)
	if err := d.Start(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Start = %v", err)
	}
	if d.Recording() {
		t.Fatal("failed start must not leave a capture")
	}

	d = NewDictation(&fakeRecorder{capture: &fakeCapture{audio: []byte{1}}}, &fakeTranscriber{err: boom}, nil)
	d.Start(context.Background())
	if _, err := d.Stop(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Stop = %v", err)
	}
}

func TestUnavailable(t *testing.T) {
	var r Recognizer = Unavailable{}
	if err := r.Start(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Start = %v", err)
	}
	if r.Recording() {
		t.Fatal("Unavailable never records")
	}
}

func TestExecRecorder_CapturesStdout(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	c, err := ExecRecorder{Command: []string{"sh", "-c", "printf pcm"}}.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	audio, err := c.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if string(audio) != "pcm" {
		t.Fatalf("audio = %q", audio)
	}

	again, err := c.Stop()
	if err != nil || string(again) != "pcm" {
		t.Fatalf("second Stop = %q, %v", again, err)
	}
}

func TestExecRecorder_InterruptsLongRunning(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	c, err := ExecRecorder{Command: []string{"sh", "-c", "printf ab; exec sleep 30"}}.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		audio, err := c.Stop()
		if err != nil {
			t.Errorf("Stop: %v", err)
		}
		if string(audio) != "ab" {
			t.Errorf("audio = %q", audio)
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not interrupt the recorder")
	}
}

func TestExecRecorder_NoCommand(t *testing.T) {
	if _, err := (ExecRecorder{}).Start(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakeSpeechClient struct {
	req  *speechpb.RecognizeRequest
	resp *speechpb.RecognizeResponse
}

func (f *fakeSpeechClient) Recognize(_ context.Context, req *speechpb.RecognizeRequest, _ ...gax.CallOption) (*speechpb.RecognizeResponse, error) {
	f.req = req
	return f.resp, nil
}

func (f *fakeSpeechClient) Close() error { return nil }

func TestCloudTranscriber(t *testing.T) {
	client := &fakeSpeechClient{resp: &speechpb.RecognizeResponse{
		Results: []*speechpb.SpeechRecognitionResult{
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "Dia merasa "}, {Transcript: "ignored"}}},
			{},
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "sedih."}}},
		},
	}}
	tr := newCloudTranscriber(client, CloudConfig{}, nil)

	text, err := tr.Transcribe(context.Background(), []byte{0, 1})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "Dia merasa sedih." {
		t.Errorf("text = %q", text)
	}

	cfg := client.req.GetConfig()
	if cfg.GetLanguageCode() != "id-ID" || cfg.GetSampleRateHertz() != 16000 {
		t.Errorf("config = %v", cfg)
	}
	if cfg.GetEncoding() != speechpb.RecognitionConfig_LINEAR16 {
		t.Errorf("encoding = %v", cfg.GetEncoding())
	}
	if len(client.req.GetAudio().GetContent()) != 2 {
		t.Errorf("audio not sent inline")
	}
}

package annotation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jdkato/prose/v2"

	"narrative-navigator/internal/modules/narrative/domain"
)

func TestProseAnnotator_SpansAreConsistent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping model load in short mode")
	}

	annotator := NewProseAnnotator(NewLoader())
	texts := []string{
		"Rahul walked home. She was tired.",
		"I will go. I went yesterday.",
		`He said "I can't stay," and left.  Then the rain came!`,
		"Ünïcode naïve café. Ça va?",
	}

	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			sentences, err := annotator.Annotate(context.Background(), text)
			if err != nil {
				t.Fatalf("Annotate() error = %v", err)
			}
			if len(sentences) == 0 {
				t.Fatal("no sentences")
			}

			var joined strings.Builder
			for i, sent := range sentences {
				joined.WriteString(sent.Text)
				if i == 0 && sent.Start != 0 {
					t.Errorf("first sentence starts at %d", sent.Start)
				}
				if i > 0 && sentences[i-1].End != sent.Start {
					t.Errorf("gap between sentences %d and %d", i-1, i)
				}
				for _, tk := range sent.Tokens {
					if tk.Start < sent.Start || tk.End > sent.End {
						t.Errorf("token %q [%d,%d) outside sentence [%d,%d)", tk.Text, tk.Start, tk.End, sent.Start, sent.End)
					}
					if text[tk.Start:tk.End] != tk.Text {
						t.Errorf("token %q covers %q", tk.Text, text[tk.Start:tk.End])
					}
				}
			}
			if joined.String() != text {
				t.Errorf("sentences do not partition text")
			}
			if sentences[len(sentences)-1].End != len(text) {
				t.Errorf("last sentence ends at %d, want %d", sentences[len(sentences)-1].End, len(text))
			}
		})
	}

	if !annotator.Ready() {
		t.Error("Ready() = false after use")
	}
}

func TestProseAnnotator_LoaderFailure(t *testing.T) {
	annotator := NewProseAnnotator(newLoader(func() (*prose.Model, error) {
		return nil, errors.New("no model")
	}))

	_, err := annotator.Annotate(context.Background(), "Some text.")
	if !errors.Is(err, domain.ErrAnnotationUnavailable) {
		t.Errorf("Annotate() error = %v, want ErrAnnotationUnavailable", err)
	}
}

func TestProseAnnotator_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	annotator := NewProseAnnotator(newLoader(func() (*prose.Model, error) {
		t.Error("model should not be loaded for a canceled request")
		return nil, errors.New("unreachable")
	}))
	if _, err := annotator.Annotate(ctx, "Some text."); !errors.Is(err, context.Canceled) {
		t.Errorf("Annotate() error = %v, want context.Canceled", err)
	}
}

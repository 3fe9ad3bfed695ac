package voice

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes a command with stdin and returns its stdout.
type Runner func(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, error)

// ExecRunner runs the command with os/exec.
func ExecRunner(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Espeak drives a local espeak-ng binary.
type Espeak struct {
	path   string
	voices []Descriptor
	run    Runner
}

// NewEspeak lists the engine's voices and keeps those for lang. It fails when
// the binary cannot be run or offers no voices.
func NewEspeak(ctx context.Context, path, lang string, run Runner) (*Espeak, error) {
	if run == nil {
		run = ExecRunner
	}
	out, err := run(ctx, path, []string{"--voices"}, nil)
	if err != nil {
		return nil, fmt.Errorf("list espeak voices: %w", err)
	}
	voices := ParseVoices(out)
	if len(voices) == 0 {
		return nil, errors.New("espeak reported no voices")
	}

	return &Espeak{
		path:   path,
		voices: filterLanguage(voices, lang),
		run:    run,
	}, nil
}

func (e *Espeak) Name() string { return "espeak-ng" }
func (e *Espeak) Ext() string  { return "wav" }

func (e *Espeak) Synthesize(ctx context.Context, text string, profile Profile, path string) error {
	v := e.voices[Match(profile, e.voices)]
	args := []string{
		"-v", v.ID,
		"-s", strconv.Itoa(profile.Rate),
		"-w", path,
		"--stdin",
	}
	if _, err := e.run(ctx, e.path, args, strings.NewReader(text)); err != nil {
		return fmt.Errorf("espeak synthesis: %w", err)
	}
	return nil
}

// ParseVoices reads the table printed by `espeak-ng --voices`:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  en-gb          --/M       English_(Great_Britain) gmw/en   (en 2)
func ParseVoices(out []byte) []Descriptor {
	var voices []Descriptor
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 5 || fields[0] == "Pty" {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}

		gender := ""
		if _, g, ok := strings.Cut(fields[2], "/"); ok {
			switch g {
			case "M":
				gender = GenderMale
			case "F":
				gender = GenderFemale
			}
		}
		voices = append(voices, Descriptor{
			ID:       fields[1],
			Name:     strings.ReplaceAll(fields[3], "_", " "),
			Language: fields[1],
			Gender:   gender,
		})
	}
	return voices
}

// filterLanguage keeps voices for lang and its regional variants, or all
// voices when none match.
func filterLanguage(voices []Descriptor, lang string) []Descriptor {
	if lang == "" {
		return voices
	}
	var out []Descriptor
	for _, v := range voices {
		if v.Language == lang || strings.HasPrefix(v.Language, lang+"-") {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return voices
	}
	return out
}

package voice

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsbreeze/internal/logger"
	"github.com/deusflow/newsbreeze/internal/ratelimit"
)

type fakeEngine struct {
	name string
	ext  string
	err  error

	mu       sync.Mutex
	calls    int
	profiles []Profile
}

func (f *fakeEngine) Name() string { return f.name }
func (f *fakeEngine) Ext() string  { return f.ext }

func (f *fakeEngine) Synthesize(_ context.Context, text string, profile Profile, path string) error {
	f.mu.Lock()
	f.calls++
	f.profiles = append(f.profiles, profile)
	f.mu.Unlock()
	if f.err != nil {
		// leave a partial file behind to check cleanup
		os.WriteFile(path, []byte("partial"), 0o644)
		return f.err
	}
	return os.WriteFile(path, []byte("audio:"+text), 0o644)
}

func TestFileName(t *testing.T) {
	// md5("hello") = 5d41402abc4b2a76b9719d911017c592
	assert.Equal(t, "news_morgan_freeman_5d41402a.mp3", FileName("morgan_freeman", "hello", "mp3"))
	assert.Equal(t, FileName("v", "same text", "wav"), FileName("v", "same text", "wav"))
	assert.NotEqual(t, FileName("v", "text a", "wav"), FileName("v", "text b", "wav"))
}

func TestSynthesize_Primary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audio")
	primary := &fakeEngine{name: "cloud", ext: "mp3"}
	secondary := &fakeEngine{name: "local", ext: "wav"}
	svc := NewService(dir, primary, secondary, nil, logger.Discard())

	res, err := svc.Synthesize(context.Background(), "hello", "morgan_freeman")
	require.NoError(t, err)
	assert.Equal(t, "/audio/news_morgan_freeman_5d41402a.mp3", res.Ref)
	assert.Equal(t, "cloud", res.Engine)
	assert.FileExists(t, res.Path)
	assert.Equal(t, 0, secondary.calls)

	// same input regenerates under the same name
	again, err := svc.Synthesize(context.Background(), "hello", "morgan_freeman")
	require.NoError(t, err)
	assert.Equal(t, res.Ref, again.Ref)
	assert.Equal(t, 2, primary.calls)
}

func TestSynthesize_FallsBackToSecondary(t *testing.T) {
	dir := t.TempDir()
	primary := &fakeEngine{name: "cloud", ext: "mp3", err: errors.New("network down")}
	secondary := &fakeEngine{name: "local", ext: "wav"}
	svc := NewService(dir, primary, secondary, nil, logger.Discard())

	res, err := svc.Synthesize(context.Background(), "hello", "stephen_hawking")
	require.NoError(t, err)
	assert.Equal(t, "local", res.Engine)
	assert.Equal(t, "/audio/news_stephen_hawking_5d41402a.wav", res.Ref)
	assert.NoFileExists(t, filepath.Join(dir, "news_stephen_hawking_5d41402a.mp3"))
	require.Len(t, secondary.profiles, 1)
	assert.Equal(t, 120, secondary.profiles[0].Rate)
}

func TestSynthesize_BothFail(t *testing.T) {
	primary := &fakeEngine{name: "cloud", ext: "mp3", err: errors.New("a")}
	secondary := &fakeEngine{name: "local", ext: "wav", err: errors.New("b")}
	svc := NewService(t.TempDir(), primary, secondary, nil, logger.Discard())

	_, err := svc.Synthesize(context.Background(), "hello", "morgan_freeman")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSynthesize_NoSecondary(t *testing.T) {
	primary := &fakeEngine{name: "cloud", ext: "mp3", err: errors.New("a")}
	svc := NewService(t.TempDir(), primary, nil, nil, logger.Discard())

	_, err := svc.Synthesize(context.Background(), "hello", "morgan_freeman")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSynthesize_NoEngines(t *testing.T) {
	svc := NewService(t.TempDir(), nil, nil, nil, logger.Discard())
	assert.False(t, svc.Loaded())

	_, err := svc.Synthesize(context.Background(), "hello", "")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSynthesize_AudioDirNotCreatable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "audio")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0o644))

	primary := &fakeEngine{name: "cloud", ext: "mp3"}
	svc := NewService(blocker, primary, nil, nil, logger.Discard())

	_, err := svc.Synthesize(context.Background(), "hello world", "morgan_freeman")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Zero(t, primary.calls, "no engine runs without an output directory")
}

func TestSynthesize_EmptyText(t *testing.T) {
	svc := NewService(t.TempDir(), &fakeEngine{name: "cloud", ext: "mp3"}, nil, nil, logger.Discard())
	_, err := svc.Synthesize(context.Background(), "  ", "morgan_freeman")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestSynthesize_UnknownVoiceUsesDefault(t *testing.T) {
	primary := &fakeEngine{name: "cloud", ext: "mp3"}
	svc := NewService(t.TempDir(), primary, nil, nil, logger.Discard())

	res, err := svc.Synthesize(context.Background(), "hello", "../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "/audio/news_celebrity_voice_5d41402a.mp3", res.Ref)
}

func TestSynthesize_BudgetSkipsPrimary(t *testing.T) {
	primary := &fakeEngine{name: "cloud", ext: "mp3"}
	secondary := &fakeEngine{name: "local", ext: "wav"}
	budget := ratelimit.NewBudget(map[string]int{ratelimit.KindTTS: 1}, logger.Discard())
	svc := NewService(t.TempDir(), primary, secondary, budget, logger.Discard())

	first, err := svc.Synthesize(context.Background(), "one", "barack_obama")
	require.NoError(t, err)
	assert.Equal(t, "cloud", first.Engine)

	second, err := svc.Synthesize(context.Background(), "two", "barack_obama")
	require.NoError(t, err)
	assert.Equal(t, "local", second.Engine)
}

func TestProfiles(t *testing.T) {
	names := make([]string, 0)
	for _, p := range Profiles() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"morgan_freeman", "david_attenborough", "barack_obama", "stephen_hawking", "winston_churchill"}, names)
	assert.Equal(t, DefaultVoice, Lookup("nobody").Name)
	assert.Equal(t, 140, Lookup("david_attenborough").Rate)
	assert.Equal(t, 150, Lookup(DefaultVoice).Rate)
}

func TestMatch(t *testing.T) {
	voices := []Descriptor{
		{ID: "en-us", Name: "English (America)", Language: "en-us", Gender: GenderFemale},
		{ID: "en-029", Name: "English (Caribbean)", Language: "en-029", Gender: GenderMale},
		{ID: "en-gb", Name: "English (Great Britain)", Language: "en-gb", Gender: GenderMale},
	}

	assert.Equal(t, 1, Match(Lookup("morgan_freeman"), voices))
	assert.Equal(t, 2, Match(Lookup("winston_churchill"), voices))
	assert.Equal(t, 0, Match(Lookup("stephen_hawking"), voices))
	assert.Equal(t, 0, Match(Lookup("winston_churchill"), voices[:2]))
	assert.Equal(t, 0, Match(Lookup("morgan_freeman"), nil))
}

func TestMatch_UkrainianIsNotUK(t *testing.T) {
	voices := []Descriptor{
		{ID: "uk", Name: "Ukrainian", Language: "uk"},
		{ID: "en", Name: "English UK", Language: "en"},
	}
	assert.Equal(t, 1, Match(Lookup("winston_churchill"), voices))
}

const voicesListing = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 2  en-gb           --/M      English_(Great_Britain) gmw/en           (en 2)
 5  en-us           --/F      English_(America)  gmw/en-US            (en 3)
 5  fr-fr           --/M      French_(France)    roa/fr               (fr 5)
`

func TestParseVoices(t *testing.T) {
	voices := ParseVoices([]byte(voicesListing))
	require.Len(t, voices, 4)
	assert.Equal(t, Descriptor{ID: "en-gb", Name: "English (Great Britain)", Language: "en-gb", Gender: GenderMale}, voices[1])
	assert.Equal(t, GenderFemale, voices[2].Gender)
	assert.Empty(t, ParseVoices([]byte("garbage\n")))
}

type recordedRun struct {
	name  string
	args  []string
	stdin string
}

func TestEspeak(t *testing.T) {
	var runs []recordedRun
	run := func(_ context.Context, name string, args []string, stdin io.Reader) ([]byte, error) {
		r := recordedRun{name: name, args: args}
		if stdin != nil {
			b, _ := io.ReadAll(stdin)
			r.stdin = string(b)
		}
		runs = append(runs, r)
		if len(args) == 1 && args[0] == "--voices" {
			return []byte(voicesListing), nil
		}
		return nil, nil
	}

	e, err := NewEspeak(context.Background(), "espeak-ng", "en", run)
	require.NoError(t, err)
	assert.Len(t, e.voices, 2, "only English voices are kept")

	err = e.Synthesize(context.Background(), "Good evening.", Lookup("winston_churchill"), "/tmp/out.wav")
	require.NoError(t, err)

	require.Len(t, runs, 2)
	assert.Equal(t, "espeak-ng", runs[1].name)
	assert.Equal(t, []string{"-v", "en-gb", "-s", "150", "-w", "/tmp/out.wav", "--stdin"}, runs[1].args)
	assert.Equal(t, "Good evening.", runs[1].stdin)
}

func TestNewEspeak_Unavailable(t *testing.T) {
	failing := func(context.Context, string, []string, io.Reader) ([]byte, error) {
		return nil, errors.New("executable file not found")
	}
	_, err := NewEspeak(context.Background(), "espeak-ng", "en", failing)
	assert.Error(t, err)

	empty := func(context.Context, string, []string, io.Reader) ([]byte, error) {
		return []byte("Pty Language Age/Gender VoiceName File\n"), nil
	}
	_, err = NewEspeak(context.Background(), "espeak-ng", "en", empty)
	assert.Error(t, err)
}

func TestSplitText(t *testing.T) {
	assert.Empty(t, splitText("   ", 100))
	assert.Equal(t, []string{"short text"}, splitText("short text", 100))

	long := strings.Repeat("word ", 60)
	chunks := splitText(long, 100)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 100)
	}
	assert.Equal(t, strings.TrimSpace(long), strings.Join(chunks, " "))

	assert.Equal(t, []string{"abcd", "ef", "gh"}, splitText("abcdef gh", 4))
}

func TestGoogleTTS(t *testing.T) {
	var gotQueries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate_tts", r.URL.Path)
		assert.Equal(t, "tw-ob", r.URL.Query().Get("client"))
		assert.Equal(t, "en", r.URL.Query().Get("tl"))
		gotQueries = append(gotQueries, r.URL.Query().Get("q"))
		w.Write([]byte("mp3-" + r.URL.Query().Get("idx") + ";"))
	}))
	defer srv.Close()

	g := NewGoogleTTS(srv.URL, "en")
	path := filepath.Join(t.TempDir(), "out.mp3")
	text := strings.Repeat("news ", 30) // 150 chars, two chunks

	require.NoError(t, g.Synthesize(context.Background(), text, Profile{}, path))
	assert.Len(t, gotQueries, 2)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mp3-0;mp3-1;", string(data))
}

func TestGoogleTTS_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGoogleTTS(srv.URL, "en")
	path := filepath.Join(t.TempDir(), "out.mp3")
	err := g.Synthesize(context.Background(), "hello", Profile{}, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.NoFileExists(t, path)
}

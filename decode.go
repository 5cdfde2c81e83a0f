package sie

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	EncodingUTF8        = "utf-8"
	EncodingISO88591    = "iso-8859-1"
	EncodingWindows1252 = "windows-1252"
	EncodingCP850       = "cp850"

	// DefaultMaxUploadSize is the largest file accepted for import.
	DefaultMaxUploadSize = 50 << 20

	sampleSize = 1024
)

var DefaultCandidates = []string{EncodingUTF8, EncodingISO88591, EncodingWindows1252, EncodingCP850}

var ErrInvalidUpload = errors.New("ogiltig fil")

var formatTagExp = regexp.MustCompile(`#FORMAT\s+"?([A-Za-z0-9]+)"?`)

// Sequences that show up when UTF-8 text has been decoded as Latin-1 or
// Windows-1252.
var mojibake = []string{"Ã¥", "Ã¤", "Ã¶", "Ã…", "Ã„", "Ã–", "Ã©", "Ã¼", "Ã\u0085", "Ã\u0084", "Ã\u0096", "â€", "Â§", "Â "}

var mojibakeRepairs = strings.NewReplacer(
	"Ã¥", "å",
	"Ã¤", "ä",
	"Ã¶", "ö",
	"Ã…", "Å",
	"Ã\u0085", "Å",
	"Ã„", "Ä",
	"Ã\u0084", "Ä",
	"Ã–", "Ö",
	"Ã\u0096", "Ö",
	"Ã©", "é",
	"Ã‰", "É",
	"Ã¼", "ü",
	"â€“", "–",
	"â€™", "’",
	"Â§", "§",
)

const swedishLetters = "åäöÅÄÖéÉ"

type DecodeOptions struct {
	// Candidates are tried in order; ties keep the earliest candidate.
	Candidates []string
	Debug      bool
	Logger     *slog.Logger
}

type Decoded struct {
	Text      string
	Encoding  string
	FormatTag string
	Log       []string
}

// Decode turns raw file bytes into text, guessing the code page.
func Decode(data []byte) Decoded {
	return DecodeWith(data, DecodeOptions{})
}

func DecodeWith(data []byte, opts DecodeOptions) Decoded {
	d := decoder{opts: opts}
	if len(d.opts.Candidates) == 0 {
		d.opts.Candidates = DefaultCandidates
	}
	if d.opts.Logger == nil {
		d.opts.Logger = slog.Default()
	}
	return d.decode(data)
}

type decoder struct {
	opts DecodeOptions
	log  []string
}

func (d *decoder) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d.log = append(d.log, msg)
	if d.opts.Debug {
		d.opts.Logger.Debug("sie decode", "msg", msg)
	}
}

func (d *decoder) decode(data []byte) Decoded {
	res := Decoded{Encoding: EncodingUTF8}

	sample := data
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	if m := formatTagExp.FindSubmatch(sample); m != nil {
		res.FormatTag = strings.ToUpper(string(m[1]))
		d.logf("format tag %s", res.FormatTag)
	}

	if res.FormatTag == "PC8" {
		text, err := decodeAs(EncodingCP850, data)
		if err == nil {
			d.logf("PC8 declared, using %s", EncodingCP850)
			res.Text = repair(text)
			res.Encoding = EncodingCP850
			res.Log = d.log
			return res
		}
		d.logf("cp850 failed: %v", err)
	}

	best := -1 << 31
	found := false
	for _, enc := range d.opts.Candidates {
		text, err := decodeAs(enc, data)
		if err != nil {
			d.logf("%s: %v", enc, err)
			continue
		}
		score := scoreText(text)
		d.logf("%s: score %d", enc, score)
		if !found || score > best {
			best = score
			found = true
			res.Text = text
			res.Encoding = strings.ToLower(enc)
		}
	}
	if !found {
		d.logf("no candidate succeeded, falling back to %s", EncodingUTF8)
		res.Text, _ = decodeAs(EncodingUTF8, data)
		res.Encoding = EncodingUTF8
	}

	res.Text = repair(res.Text)
	d.logf("selected %s", res.Encoding)
	res.Log = d.log
	return res
}

func decodeAs(enc string, data []byte) (string, error) {
	var cm *charmap.Charmap
	switch strings.ToLower(enc) {
	case EncodingUTF8, "utf8":
		return decodeUTF8(data), nil
	case EncodingISO88591, "latin1":
		cm = charmap.ISO8859_1
	case EncodingWindows1252, "cp1252":
		cm = charmap.Windows1252
	case EncodingCP850, "ibm850", "pc8":
		cm = charmap.CodePage850
	default:
		return "", fmt.Errorf("unsupported encoding %q", enc)
	}
	return decodeCharmap(cm, data)
}

func decodeCharmap(cm encoding.Encoding, data []byte) (string, error) {
	bs, err := cm.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

// decodeUTF8 replaces every invalid byte with U+FFFD.
func decodeUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	var b strings.Builder
	b.Grow(len(data) + len(data)/2)
	for len(data) > 0 {
		r, width := utf8.DecodeRune(data)
		if r == utf8.RuneError && width == 1 {
			b.WriteRune(utf8.RuneError)
		} else {
			b.Write(data[:width])
		}
		data = data[width:]
	}
	return b.String()
}

func scoreText(text string) int {
	score := 0
	if strings.Contains(text, "#KONTO") || strings.Contains(text, "#FNAMN") {
		score += 100
	}
	score -= 10 * strings.Count(text, string(utf8.RuneError))
	for _, seq := range mojibake {
		score -= 5 * strings.Count(text, seq)
	}
	for _, r := range text {
		if strings.ContainsRune(swedishLetters, r) {
			score += 2
		}
	}
	return score
}

func repair(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	return mojibakeRepairs.Replace(text)
}

// ValidateUpload checks the file name and size before anything is decoded.
func ValidateUpload(name string, size, maxSize int64) error {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".sie", ".se4", ".se":
	default:
		return fmt.Errorf("%w: ogiltig filtyp %q, endast .sie, .se4 och .se stöds", ErrInvalidUpload, filepath.Ext(name))
	}
	if size <= 0 {
		return fmt.Errorf("%w: filen är tom", ErrInvalidUpload)
	}
	if size > maxSize {
		return fmt.Errorf("%w: filen är för stor (%d MB), max %d MB", ErrInvalidUpload, size>>20, maxSize>>20)
	}
	return nil
}

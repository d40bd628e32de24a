// Package report renders health guides as PDF documents and manages their
// retention on disk.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/signintech/gopdf"

	"arogya-intake/internal/logging"
	"arogya-intake/pkg"
)

var (
	ErrInvalidName = errors.New("invalid report name")
	ErrNotFound    = errors.New("report not found")
)

const fontFamily = "Body"

// fontPaths are tried in order when no font is configured.  Noto Sans
// covers Devanagari; DejaVu covers Latin text.
var fontPaths = []string{
	"/usr/share/fonts/truetype/noto/NotoSansDevanagari-Regular.ttf",
	"/usr/share/fonts/noto/NotoSansDevanagari-Regular.ttf",
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
}

// FindFont returns configured if set, otherwise the first system font found.
func FindFont(configured string) (string, error) {
	candidates := fontPaths
	if configured != "" {
		candidates = []string{configured}
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no usable TTF font found (tried %s)", strings.Join(candidates, ", "))
}

// Renderer writes guide PDFs into a directory.
type Renderer struct {
	dir  string
	font string
	now  func() time.Time
}

// NewRenderer creates dir if needed and resolves the font to use.
func NewRenderer(dir, fontPath string) (*Renderer, error) {
	font, err := FindFont(fontPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}
	return &Renderer{dir: dir, font: font, now: time.Now}, nil
}

// Dir is the directory reports are written to.
func (r *Renderer) Dir() string { return r.dir }

type sectionTitles struct {
	Title, Session, Language, Date, Severity                         string
	Summary, Conditions, OTC, Warnings, Remedies, Diet, Life, Doctor string
	Ingredients, Preparation, Usage, Benefits, History, Disclaimer   string
}

var titles = map[pkg.Language]sectionTitles{
	pkg.LanguageEnglish: {
		Title: "Personal Health Guide", Session: "Session", Language: "Language", Date: "Date", Severity: "Severity",
		Summary: "Symptom Summary", Conditions: "Possible Conditions", OTC: "Self-care and OTC Recommendations",
		Warnings: "Warning Signs", Remedies: "Traditional Remedies", Diet: "Dietary Advice",
		Life: "Lifestyle Tips", Doctor: "When to See a Doctor",
		Ingredients: "Ingredients", Preparation: "Preparation", Usage: "Usage", Benefits: "Benefits",
		History:    "Conversation History",
		Disclaimer: "This guide is general information from an AI assistant, not a diagnosis. Please consult a qualified doctor.",
	},
	pkg.LanguageHindi: {
		Title: "व्यक्तिगत स्वास्थ्य गाइड", Session: "सत्र", Language: "भाषा", Date: "तारीख", Severity: "गंभीरता",
		Summary: "लक्षणों का सारांश", Conditions: "संभावित कारण", OTC: "घरेलू देखभाल",
		Warnings: "चेतावनी के संकेत", Remedies: "दादी माँ के नुस्खे", Diet: "खान-पान की सलाह",
		Life: "जीवनशैली", Doctor: "डॉक्टर से कब मिलें",
		Ingredients: "सामग्री", Preparation: "बनाने की विधि", Usage: "उपयोग", Benefits: "लाभ",
		History:    "बातचीत का इतिहास",
		Disclaimer: "यह गाइड AI सहायक द्वारा दी गई सामान्य जानकारी है, निदान नहीं। कृपया डॉक्टर से परामर्श करें।",
	},
}

func titlesFor(lang pkg.Language) sectionTitles {
	if t, ok := titles[lang.OrDefault()]; ok {
		return t
	}
	return titles[pkg.DefaultLanguage]
}

const (
	pageWidth  = 500.0
	pageBottom = 790.0
	lineHeight = 14.0
	marginLeft = 48.0
	marginTop  = 48.0
)

// doc wraps gopdf with page breaking and sticky errors.
type doc struct {
	pdf *gopdf.GoPdf
	err error
}

func (d *doc) setFont(size float64) {
	if d.err != nil {
		return
	}
	d.err = d.pdf.SetFont(fontFamily, "", size)
}

func (d *doc) newline(h float64) {
	if d.pdf.GetY()+h > pageBottom {
		d.pdf.AddPage()
		d.pdf.SetXY(marginLeft, marginTop)
		return
	}
	d.pdf.Br(h)
	d.pdf.SetX(marginLeft)
}

// text writes s wrapped to the page width.
func (d *doc) text(s string) {
	if d.err != nil {
		return
	}
	for _, para := range strings.Split(s, "\n") {
		if strings.TrimSpace(para) == "" {
			d.newline(lineHeight / 2)
			continue
		}
		lines, err := d.pdf.SplitText(para, pageWidth)
		if err != nil {
			d.err = err
			return
		}
		for _, l := range lines {
			if err := d.pdf.Cell(nil, l); err != nil {
				d.err = err
				return
			}
			d.newline(lineHeight)
		}
	}
}

func (d *doc) heading(s string) {
	d.newline(lineHeight / 2)
	d.setFont(14)
	d.text(s)
	d.setFont(11)
}

func (d *doc) bullets(items []string) {
	for _, it := range items {
		d.text("- " + it)
	}
}

// FileName is the report name for a session rendered at t.
func FileName(sessionID string, t time.Time) string {
	return fmt.Sprintf("health_guide_%s_%s.pdf", sessionID, t.UTC().Format("20060102_150405"))
}

// Render writes the guide PDF and returns its file name.
func (r *Renderer) Render(session *pkg.Session, guide *pkg.HealthGuide, history []pkg.Message) (string, error) {
	t := titlesFor(guide.Language)
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()
	if err := pdf.AddTTFFont(fontFamily, r.font); err != nil {
		return "", fmt.Errorf("load font %s: %w", r.font, err)
	}
	pdf.SetXY(marginLeft, marginTop)
	d := &doc{pdf: pdf}

	now := r.now()
	d.setFont(20)
	d.text(t.Title)
	d.newline(lineHeight / 2)
	d.setFont(11)
	d.text(fmt.Sprintf("%s: %s", t.Session, session.ID))
	d.text(fmt.Sprintf("%s: %s", t.Language, guide.Language))
	d.text(fmt.Sprintf("%s: %s", t.Date, now.Format("02.01.2006 15:04")))
	d.text(fmt.Sprintf("%s: %s", t.Severity, guide.Severity))

	d.heading(t.Summary)
	d.text(guide.SymptomSummary)
	if len(session.Symptoms) > 0 {
		d.text(strings.Join(session.Symptoms, ", "))
	}
	d.heading(t.Conditions)
	d.bullets(guide.PossibleConditions)
	d.heading(t.OTC)
	d.bullets(guide.OTCRecommendations)
	d.heading(t.Warnings)
	d.bullets(guide.WarningSigns)

	d.heading(t.Remedies)
	for _, rem := range guide.Remedies {
		d.text(rem.Name)
		d.text(fmt.Sprintf("%s: %s", t.Ingredients, strings.Join(rem.Ingredients, ", ")))
		d.text(fmt.Sprintf("%s: %s", t.Preparation, rem.Preparation))
		d.text(fmt.Sprintf("%s: %s", t.Usage, rem.Usage))
		d.text(fmt.Sprintf("%s: %s", t.Benefits, rem.Benefits))
		d.newline(lineHeight / 2)
	}

	d.heading(t.Diet)
	d.bullets(guide.DietaryAdvice)
	d.heading(t.Life)
	d.bullets(guide.LifestyleTips)
	d.heading(t.Doctor)
	d.bullets(guide.WhenToSeeDoctor)

	if len(history) > 0 {
		d.heading(t.History)
		for _, m := range history {
			d.text(fmt.Sprintf("[%s] %s: %s", m.Timestamp.Format("15:04"), m.Role, m.Content))
		}
	}

	d.newline(lineHeight)
	d.setFont(9)
	d.text(t.Disclaimer)
	if d.err != nil {
		return "", fmt.Errorf("layout report: %w", d.err)
	}

	name := FileName(session.ID, now)
	path := filepath.Join(r.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	if err := writeReport(f, pdf); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return name, nil
}

// writeReport copies src into w and closes it.  A failed close is reported
// since it can mean the data never reached the disk.
func writeReport(w io.WriteCloser, src io.WriterTo) error {
	if _, err := src.WriteTo(w); err != nil {
		_ = w.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}

// Path resolves a report name inside the reports directory.  Names with any
// directory component are rejected.
func (r *Renderer) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") ||
		strings.ContainsAny(name, `/\`) || !strings.HasSuffix(name, ".pdf") {
		return "", ErrInvalidName
	}
	p := filepath.Join(r.dir, name)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return p, nil
}

// Cleanup deletes reports last modified more than maxAge ago and returns how
// many were removed.
func (r *Renderer) Cleanup(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return 0, fmt.Errorf("read reports dir: %w", err)
	}
	cutoff := r.now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(r.dir, e.Name())); err != nil {
				logging.Logger().Error("remove old report", "file", e.Name(), "error", err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}

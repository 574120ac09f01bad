package pptx

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
)

func writeDeck(t *testing.T, deck *Deck) *zip.Reader {
	t.Helper()
	var buf bytes.Buffer
	if err := deck.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("deck is not a readable zip: %v", err)
	}
	return zr
}

func readPart(t *testing.T, zr *zip.Reader, name string) string {
	t.Helper()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(data)
	}
	t.Fatalf("part %s not found in archive", name)
	return ""
}

func TestDeck_WriteEmptyDeckFails(t *testing.T) {
	var buf bytes.Buffer
	if err := NewDeck().Write(&buf); err == nil {
		t.Error("Write() on empty deck = nil, want error")
	}
}

func TestDeck_SlideCount(t *testing.T) {
	deck := NewDeck()
	if deck.SlideCount() != 0 {
		t.Errorf("SlideCount() = %d, want 0", deck.SlideCount())
	}
	deck.AddSlide(Slide{Title: "One"})
	deck.AddSlide(Slide{Title: "Two"})
	if deck.SlideCount() != 2 {
		t.Errorf("SlideCount() = %d, want 2", deck.SlideCount())
	}
}

func TestDeck_WriteStructure(t *testing.T) {
	deck := NewDeck()
	deck.AddSlide(Slide{Title: "Team Pulse", Body: []Paragraph{{Text: "Responses: 12"}}})
	deck.AddSlide(Slide{Title: "Engagement"})

	zr := writeDeck(t, deck)

	required := []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"ppt/presentation.xml",
		"ppt/_rels/presentation.xml.rels",
		"ppt/theme/theme1.xml",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
		"ppt/slides/_rels/slide1.xml.rels",
		"ppt/slides/_rels/slide2.xml.rels",
	}
	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, name := range required {
		if !names[name] {
			t.Errorf("archive missing part %s", name)
		}
	}
}

func TestDeck_ContentTypesCoverEverySlide(t *testing.T) {
	deck := NewDeck()
	for i := 0; i < 3; i++ {
		deck.AddSlide(Slide{Title: "s"})
	}
	zr := writeDeck(t, deck)

	contentTypes := readPart(t, zr, "[Content_Types].xml")
	for _, partName := range []string{"/ppt/slides/slide1.xml", "/ppt/slides/slide2.xml", "/ppt/slides/slide3.xml"} {
		if !strings.Contains(contentTypes, partName) {
			t.Errorf("content types missing override for %s", partName)
		}
	}
}

func TestDeck_PresentationReferencesSlides(t *testing.T) {
	deck := NewDeck()
	deck.AddSlide(Slide{Title: "a"})
	deck.AddSlide(Slide{Title: "b"})
	zr := writeDeck(t, deck)

	presentation := readPart(t, zr, "ppt/presentation.xml")
	// Slide ids start at 256, relationship ids after the master at rId1
	for _, ref := range []string{`id="256" r:id="rId2"`, `id="257" r:id="rId3"`} {
		if !strings.Contains(presentation, ref) {
			t.Errorf("presentation.xml missing slide reference %s", ref)
		}
	}

	rels := readPart(t, zr, "ppt/_rels/presentation.xml.rels")
	for _, target := range []string{"slides/slide1.xml", "slides/slide2.xml", "slideMasters/slideMaster1.xml"} {
		if !strings.Contains(rels, target) {
			t.Errorf("presentation rels missing target %s", target)
		}
	}
}

func TestDeck_SlideContent(t *testing.T) {
	deck := NewDeck()
	deck.AddSlide(Slide{
		Title: "Mood",
		Body: []Paragraph{
			{Text: "Most chosen: Calm", Bold: true},
			{Text: "Calm: 4", Level: 1},
			{Text: "Large print", Size: 24},
		},
	})
	zr := writeDeck(t, deck)
	slide := readPart(t, zr, "ppt/slides/slide1.xml")

	if !strings.Contains(slide, "<a:t>Mood</a:t>") {
		t.Error("slide missing title text")
	}
	if !strings.Contains(slide, "<a:t>Most chosen: Calm</a:t>") {
		t.Error("slide missing body text")
	}
	if !strings.Contains(slide, `b="1"`) {
		t.Error("slide missing bold run")
	}
	if !strings.Contains(slide, `<a:pPr lvl="1"/>`) {
		t.Error("slide missing indented paragraph")
	}
	// Size attribute is hundredths of a point
	if !strings.Contains(slide, `sz="2400"`) {
		t.Errorf("slide missing 24pt run")
	}
	if !strings.Contains(slide, `sz="1800"`) {
		t.Errorf("slide missing default 18pt run")
	}
}

func TestDeck_EscapesXML(t *testing.T) {
	deck := NewDeck()
	deck.AddSlide(Slide{
		Title: "Q&A <session>",
		Body:  []Paragraph{{Text: `"quotes" & <tags>`}},
	})
	zr := writeDeck(t, deck)
	slide := readPart(t, zr, "ppt/slides/slide1.xml")

	if strings.Contains(slide, "<session>") {
		t.Error("title angle brackets not escaped")
	}
	if !strings.Contains(slide, "Q&amp;A &lt;session&gt;") {
		t.Error("escaped title text missing")
	}
	if !strings.Contains(slide, "&amp; &lt;tags&gt;") {
		t.Error("escaped body text missing")
	}
}

func TestDeck_UnicodeBodySurvives(t *testing.T) {
	deck := NewDeck()
	deck.AddSlide(Slide{Title: "Rückmeldung", Body: []Paragraph{{Text: "“Erschöpft”"}}})
	zr := writeDeck(t, deck)
	slide := readPart(t, zr, "ppt/slides/slide1.xml")

	if !strings.Contains(slide, "Rückmeldung") {
		t.Error("unicode title lost")
	}
	if !strings.Contains(slide, "Erschöpft") {
		t.Error("unicode body lost")
	}
}

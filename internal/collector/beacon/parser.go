package beacon

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The reader-rendered feed separates events with a markdown horizontal
// rule and opens each with a "[Disease, Country](link)" header. Everything
// else in a block is either a date line, chrome (images, report counters),
// or description text.
var (
	blockDelimiter = regexp.MustCompile(`\n\* \* \*\n`)
	headerPattern  = regexp.MustCompile(`\[(.*?), (.*?)\]\((.*?)\)`)
	datePattern    = regexp.MustCompile(`^[A-Z][a-z]{2}\s+\d{1,2}\s+[A-Z][a-z]{2}\s+\d{4}$`)
	reportsPattern = regexp.MustCompile(`(?i)^\d+ reports?$`)
	casesPattern   = regexp.MustCompile(`(?i)(\d+)\s+cases`)
	deathsPattern  = regexp.MustCompile(`(?i)(\d+)\s+deaths`)
)

const dateLayout = "Mon 2 Jan 2006"

// Event is one parsed feed entry, ready to become a Signal.
type Event struct {
	Disease      string
	Country      string
	SourceURL    string
	EventID      string
	Description  string
	DateReported time.Time
	Cases        int
	Deaths       int
}

// SplitBlocks cuts the document into candidate event blocks.
func SplitBlocks(doc string) []string {
	return blockDelimiter.Split(doc, -1)
}

// ParseHeader extracts the (disease, country, link) triple from a block.
// Blocks without the header are feed chrome, not errors.
func ParseHeader(block string) (disease, country, link string, ok bool) {
	m := headerPattern.FindStringSubmatch(block)
	if m == nil {
		return "", "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), strings.TrimSpace(m[3]), true
}

// lineKind classifies a single block line.
type lineKind int

const (
	lineDescription lineKind = iota
	lineDate
	lineImage
	lineReportCount
)

func classifyLine(line string) lineKind {
	switch {
	case datePattern.MatchString(line):
		return lineDate
	case strings.HasPrefix(line, "!["):
		return lineImage
	case reportsPattern.MatchString(line):
		return lineReportCount
	default:
		return lineDescription
	}
}

// parseBody walks the lines after the header, returning the space-joined
// description and the reported date. The first date line wins; fallback is
// the collection time.
func parseBody(lines []string, fallback time.Time) (string, time.Time) {
	var parts []string
	reported := fallback
	dateSeen := false

	for _, line := range lines {
		switch classifyLine(line) {
		case lineDate:
			if !dateSeen {
				if t, err := time.Parse(dateLayout, line); err == nil {
					reported = t
					dateSeen = true
				}
			}
		case lineImage, lineReportCount:
			// Feed chrome, discarded.
		default:
			parts = append(parts, line)
		}
	}

	return strings.Join(parts, " "), reported
}

// ExtractCounts pulls integer case/death counts from the description,
// defaulting to zero when absent.
func ExtractCounts(description string) (cases, deaths int) {
	if m := casesPattern.FindStringSubmatch(description); m != nil {
		cases, _ = strconv.Atoi(m[1])
	}
	if m := deathsPattern.FindStringSubmatch(description); m != nil {
		deaths, _ = strconv.Atoi(m[1])
	}
	return cases, deaths
}

// EventID derives the stable external id from the event link: the eventid
// query parameter when present, otherwise the raw link.
func EventID(link string) string {
	u, err := url.Parse(link)
	if err == nil {
		if id := u.Query().Get("eventid"); id != "" {
			return id
		}
	}
	return link
}

// ParseBlock turns one block into an Event, or nil for non-event chrome.
func ParseBlock(block, baseURL string, collectedAt time.Time) *Event {
	disease, country, link, ok := ParseHeader(block)
	if !ok {
		return nil
	}

	sourceURL := link
	if !strings.HasPrefix(link, "http") {
		sourceURL = baseURL + link
	}

	var body []string
	headerSeen := false
	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !headerSeen {
			if headerPattern.MatchString(line) {
				headerSeen = true
			}
			continue
		}
		body = append(body, line)
	}

	description, reported := parseBody(body, collectedAt)
	cases, deaths := ExtractCounts(description)

	return &Event{
		Disease:      disease,
		Country:      country,
		SourceURL:    sourceURL,
		EventID:      EventID(sourceURL),
		Description:  description,
		DateReported: reported,
		Cases:        cases,
		Deaths:       deaths,
	}
}

// ParseDocument parses the whole feed document into events, silently
// skipping blocks without an event header.
func ParseDocument(doc, baseURL string, collectedAt time.Time) []Event {
	var events []Event
	for _, block := range SplitBlocks(doc) {
		if e := ParseBlock(block, baseURL, collectedAt); e != nil {
			events = append(events, *e)
		}
	}
	return events
}

package store

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
)

// Link is one keyword association of an item.
type Link struct {
	Fingerprint string
	Keyword     string
}

// Report describes inconsistencies between the three record families.
type Report struct {
	// Items is the number of primary records.
	Items int

	// Links is the number of distinct keyword associations seen in either
	// index family.
	Links int

	// Orphans are links whose item has no primary record.
	Orphans []Link

	// MissingReverse are forward records without their reverse record.
	MissingReverse []Link

	// MissingForward are reverse records without their forward record.
	MissingForward []Link

	// Unindexed are items with no keyword at all.
	Unindexed []string

	// Mismatched are primary keys whose contents hash to something else.
	Mismatched []string

	// Foreign counts composite records that are neither forward nor
	// reverse records.
	Foreign int
}

// Clean reports whether no inconsistency was found.
func (r *Report) Clean() bool {
	return len(r.Orphans) == 0 &&
		len(r.MissingReverse) == 0 &&
		len(r.MissingForward) == 0 &&
		len(r.Unindexed) == 0 &&
		len(r.Mismatched) == 0 &&
		r.Foreign == 0
}

// classify decides which keyword association a composite record L 0x00 R
// stands for: the fingerprint-shaped half is the fingerprint and the other
// half is the keyword. Records with zero or two fingerprint-shaped halves
// are not ours.
func classify(rec record) (Link, bool) {
	left, right, _ := splitComposite(rec.key)
	leftFP, rightFP := IsFingerprint(left), IsFingerprint(right)

	switch {
	case leftFP && !rightFP:
		return Link{Fingerprint: left, Keyword: right}, true
	case rightFP && !leftFP:
		return Link{Fingerprint: right, Keyword: left}, true
	default:
		return Link{}, false
	}
}

// isForward reports whether rec is the forward record of link.
func isForward(rec record, link Link) bool {
	left, _, _ := splitComposite(rec.key)
	return left == link.Keyword
}

// Check scans the whole store and reports index inconsistencies, such as
// those left by a Save or Delete that failed half way.
func (s *NoteStore) Check() (*Report, error) {
	records, primaries, err := s.scanAll()
	if err != nil {
		return nil, err
	}

	forward := make(map[Link]bool)
	reverse := make(map[Link]bool)
	report := &Report{}

	for _, rec := range records {
		link, ok := classify(rec)
		if !ok {
			report.Foreign++
			continue
		}
		if isForward(rec, link) {
			forward[link] = true
		} else {
			reverse[link] = true
		}
	}

	indexed := make(map[string]bool)
	seen := make(map[Link]bool)
	for _, links := range []map[Link]bool{forward, reverse} {
		for link := range links {
			if seen[link] {
				continue
			}
			seen[link] = true

			if _, ok := primaries[link.Fingerprint]; !ok {
				report.Orphans = append(report.Orphans, link)
				continue
			}
			indexed[link.Fingerprint] = true
			switch {
			case forward[link] && !reverse[link]:
				report.MissingReverse = append(report.MissingReverse, link)
			case reverse[link] && !forward[link]:
				report.MissingForward = append(report.MissingForward, link)
			}
		}
	}

	for key, contents := range primaries {
		if !IsFingerprint(key) {
			continue
		}
		report.Items++
		if !indexed[key] {
			report.Unindexed = append(report.Unindexed, key)
		}
		if Fingerprint(contents) != key {
			report.Mismatched = append(report.Mismatched, key)
		}
	}
	report.Links = len(seen)

	sortReport(report)
	return report, nil
}

// Repair applies compensating writes for a report produced by Check:
// orphan links are deleted and half-present links get their missing
// record back. Unindexed and mismatched items are only logged, since the
// store cannot guess their keywords.
func (s *NoteStore) Repair(report *Report) error {
	for _, link := range report.Orphans {
		if err := s.DeleteWithSuffix(link.Keyword, link.Fingerprint); err != nil {
			return err
		}
		if err := s.DeleteWithSuffix(link.Fingerprint, link.Keyword); err != nil {
			return err
		}
		s.logger.Warn("removed orphan link",
			slog.String("fingerprint", link.Fingerprint),
			slog.String("keyword", link.Keyword))
	}

	for _, link := range report.MissingReverse {
		if err := s.backend.Put(compositeKey(link.Fingerprint, link.Keyword), []byte(link.Keyword)); err != nil {
			return fmt.Errorf("failed to restore item link %q: %w", link.Keyword, err)
		}
		s.logger.Warn("restored reverse link",
			slog.String("fingerprint", link.Fingerprint),
			slog.String("keyword", link.Keyword))
	}

	for _, link := range report.MissingForward {
		if err := s.backend.Put(compositeKey(link.Keyword, link.Fingerprint), []byte(link.Fingerprint)); err != nil {
			return fmt.Errorf("failed to restore keyword link %q: %w", link.Keyword, err)
		}
		s.logger.Warn("restored forward link",
			slog.String("fingerprint", link.Fingerprint),
			slog.String("keyword", link.Keyword))
	}

	for _, fp := range report.Unindexed {
		s.logger.Warn("item has no keywords", slog.String("fingerprint", fp))
	}
	for _, fp := range report.Mismatched {
		s.logger.Warn("item contents do not match fingerprint", slog.String("fingerprint", fp))
	}
	return nil
}

func sortReport(r *Report) {
	byLink := func(a, b Link) int {
		return cmp.Or(
			cmp.Compare(a.Fingerprint, b.Fingerprint),
			cmp.Compare(a.Keyword, b.Keyword),
		)
	}
	slices.SortFunc(r.Orphans, byLink)
	slices.SortFunc(r.MissingReverse, byLink)
	slices.SortFunc(r.MissingForward, byLink)
	slices.Sort(r.Unindexed)
	slices.Sort(r.Mismatched)
}

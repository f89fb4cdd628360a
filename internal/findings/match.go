package findings

// MatchOptions relaxes individual criteria of the approximate match
type MatchOptions struct {
	IgnoreComponent bool
	IgnoreMessage   bool
	IgnoreLine      bool
	IgnoreAuthor    bool
	IgnoreType      bool
	IgnoreSeverity  bool
}

// StrictlyIdenticalTo reports whether two findings are the same finding,
// e.g. between two branches or two platform instances
func (f *Finding) StrictlyIdenticalTo(other *Finding, ignoreComponent bool) bool {
	if f.Key == other.Key {
		return true
	}
	return f.Rule == other.Rule &&
		f.Hash == other.Hash &&
		f.Message == other.Message &&
		f.File() == other.File() &&
		(ignoreComponent || f.Component == other.Component)
}

// AlmostIdenticalTo reports whether two findings most likely are the same
// finding. Rule and hash must match; the remaining criteria are scored and
// at least 7 of 9 points are required.
func (f *Finding) AlmostIdenticalTo(other *Finding, opts MatchOptions) bool {
	if f.Rule != other.Rule || f.Hash != other.Hash {
		return false
	}
	score := 0
	if f.Message == other.Message || opts.IgnoreMessage {
		score += 2
	}
	if f.File() == other.File() {
		score += 2
	}
	if f.Line == other.Line || opts.IgnoreLine {
		score++
	}
	if f.Component == other.Component || opts.IgnoreComponent {
		score++
	}
	if f.Author == other.Author || opts.IgnoreAuthor {
		score++
	}
	if f.Type == other.Type || opts.IgnoreType {
		score++
	}
	if f.Severity == other.Severity || opts.IgnoreSeverity {
		score++
	}
	return score >= 7
}

// CanBeSynced reports whether the finding changes can be replicated to a
// sibling. With no allowed user list the finding must be untouched;
// otherwise every modifier must be an allowed (syncer) account.
func (f *Finding) CanBeSynced(allowedUsers []string) bool {
	if allowedUsers == nil {
		return !f.HasChangelog(zeroTime)
	}
	allowed := make(map[string]bool, len(allowedUsers))
	for _, u := range allowedUsers {
		allowed[u] = true
	}
	for u := range f.Modifiers() {
		if !allowed[u] {
			return false
		}
	}
	return true
}

// SiblingMatches is the outcome of a sibling search
type SiblingMatches struct {
	Exact    []*Finding
	Approx   []*Finding
	Modified []*Finding
}

// SearchSiblings looks for the counterpart of f within candidates.
// An exact match short-circuits the approximate search.
func (f *Finding) SearchSiblings(candidates []*Finding, allowedUsers []string, opts MatchOptions) SiblingMatches {
	var matches SiblingMatches
	for _, candidate := range candidates {
		if f.Key == candidate.Key {
			continue
		}
		if candidate.StrictlyIdenticalTo(f, opts.IgnoreComponent) {
			if candidate.CanBeSynced(allowedUsers) {
				matches.Exact = append(matches.Exact, candidate)
			} else {
				matches.Modified = append(matches.Modified, candidate)
			}
			return matches
		}
	}
	for _, candidate := range candidates {
		if f.Key == candidate.Key {
			continue
		}
		if candidate.AlmostIdenticalTo(f, opts) {
			if candidate.CanBeSynced(allowedUsers) {
				matches.Approx = append(matches.Approx, candidate)
			} else {
				matches.Modified = append(matches.Modified, candidate)
			}
		}
	}
	return matches
}

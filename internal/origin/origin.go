// Package origin implements the origin selector: given a duplicate set of
// two or more files, it deterministically picks the one to keep (the
// "origin"), from which every other member is replaced.
package origin

import "github.com/ttkb-oss/dedup/internal/model"

// Reason tags the rationale behind a selection, surfaced in logs and dry
// run output.
type Reason string

const (
	// ReasonHardlink: an existing hardlink (nlink > 1) was preferred.
	ReasonHardlink Reason = "existing hardlink"
	// ReasonAlreadyCloned: every member shares one clone id; nothing to do.
	ReasonAlreadyCloned Reason = "already cloned"
	// ReasonFirstSeen: no two members currently share a clone id; the
	// first-discovered, non-compressed member was picked.
	ReasonFirstSeen Reason = "first seen"
	// ReasonMostClones: the clone id with the largest bucket was used to
	// pick a representative.
	ReasonMostClones Reason = "most clones"
)

// Selection is the result of selecting an origin for a duplicate set.
type Selection struct {
	// Origin is the chosen file. Nil only when Skip is true and no
	// suitable origin exists (every member is compressed).
	Origin *model.FileMetadata
	Reason Reason
	// Skip indicates the set requires no replacement: either it is
	// already fully cloned (ReasonAlreadyCloned) or no member can serve
	// as an origin (every file is transparently compressed).
	Skip bool
	// AlreadySavedBytes is the size to attribute to the "already saved"
	// counter when Skip is set due to ReasonAlreadyCloned.
	AlreadySavedBytes uint64
}

// Select implements the deterministic selection priority. members
// must contain at least two entries; members[0] is conventionally the
// first-seen (insertion-order) entry, consistent with how dupmap.Map
// files its bucket (prior's copy first, subsequent members appended in
// arrival order).
func Select(members []*model.FileMetadata) Selection {
	if len(members) < 2 {
		panic("origin.Select requires at least two members")
	}

	if best, ok := selectByNlink(members); ok {
		return Selection{Origin: best, Reason: ReasonHardlink}
	}

	return selectByCloneHistogram(members)
}

// selectByNlink picks the member with the greatest nlink, provided at
// least one member has nlink > 1. Ties are broken by insertion order,
// which is implicit in iterating members in order and only replacing the
// current best on a strictly greater nlink.
func selectByNlink(members []*model.FileMetadata) (*model.FileMetadata, bool) {
	var best *model.FileMetadata
	for _, m := range members {
		if m.Nlink <= 1 {
			continue
		}
		if best == nil || m.Nlink > best.Nlink {
			best = m
		}
	}
	return best, best != nil
}

func selectByCloneHistogram(members []*model.FileMetadata) Selection {
	counts := make(map[uint64]int)
	firstIndexOf := make(map[uint64]int)
	for i, m := range members {
		if _, seen := firstIndexOf[m.CloneID]; !seen {
			firstIndexOf[m.CloneID] = i
		}
		counts[m.CloneID]++
	}

	if len(counts) == 1 {
		var saved uint64
		for _, m := range members[1:] {
			saved += m.Size
		}
		return Selection{Skip: true, Reason: ReasonAlreadyCloned, AlreadySavedBytes: saved}
	}

	if len(counts) == len(members) {
		for _, m := range members {
			if !m.Compressed() {
				return Selection{Origin: m, Reason: ReasonFirstSeen}
			}
		}
		return Selection{Skip: true, Reason: ReasonFirstSeen}
	}

	var bestCloneID uint64
	bestCount := -1
	for cloneID, count := range counts {
		if count > bestCount || (count == bestCount && firstIndexOf[cloneID] < firstIndexOf[bestCloneID]) {
			bestCloneID = cloneID
			bestCount = count
		}
	}

	for _, m := range members {
		if m.CloneID == bestCloneID {
			return Selection{Origin: m, Reason: ReasonMostClones}
		}
	}

	panic("unreachable: bestCloneID must belong to some member")
}

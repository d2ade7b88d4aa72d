package services

import (
	"fmt"

	"github.com/custodia-labs/docbridge/internal/core/domain"
)

// highRiskFields cannot be auto-merged when the local value diverges from
// the remote one: picking either value silently discards a meaningful
// user decision.
var highRiskFields = map[string]bool{
	"filename": true,
	"category": true,
}

// systemFields are owned by the backend and never merged from either side.
var systemFields = map[string]bool{
	"id":          true,
	"uploaded_at": true,
}

// autoMerge combines a local update with the remote document state,
// field by field:
//   - tags from both sides are unioned
//   - fields only the local patch touched take the local value
//   - everything else takes the remote value
//
// It fails whenever the local value of a high-risk scalar field differs
// from the remote value, even if the remote never touched the field:
// no automatic pick is safe there.
func autoMerge(op domain.Operation, remote domain.Document) (domain.Document, error) {
	if op.Kind != domain.OperationUpdate || op.Snapshot == nil {
		return domain.Document{}, fmt.Errorf("auto-merge supports updates with a snapshot, got %s", op.Kind)
	}

	base := *op.Snapshot
	remotePatch := diffDocuments(base, remote)
	remoteNow := domain.PatchFromDocument(remote)

	merged := remote.Clone()
	localPatch := op.Patch.Clone()

	for field, localValue := range localPatch {
		if systemFields[field] {
			continue
		}

		if highRiskFields[field] {
			if fmt.Sprint(localValue) != fmt.Sprint(remoteNow[field]) {
				return domain.Document{}, fmt.Errorf("local %q diverges from remote, cannot auto-merge", field)
			}
			// Identical values: remote already has it.
			continue
		}

		remoteValue, remoteChanged := remotePatch[field]
		if !remoteChanged {
			merged.Apply(domain.Patch{field: localValue})
			continue
		}

		if field == "tags" {
			merged.Tags = unionTags(toStrings(localValue), toStrings(remoteValue))
			continue
		}
		// Both sides changed a low-risk field: remote already won.
	}

	return merged, nil
}

// diffDocuments returns the fields where b differs from a, as a patch in
// wire-key form.
func diffDocuments(a, b domain.Document) domain.Patch {
	pa := domain.PatchFromDocument(a)
	pb := domain.PatchFromDocument(b)

	diff := domain.Patch{}
	for field, vb := range pb {
		if fmt.Sprint(pa[field]) != fmt.Sprint(vb) {
			diff[field] = vb
		}
	}
	return diff
}

// unionTags merges two tag sets, preserving first-seen order.
func unionTags(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, tags := range [][]string{a, b} {
		for _, tag := range tags {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	return out
}

func toStrings(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

package core

import (
	"strings"
	"time"

	"github.com/Dhyanesh27/evotrack/core/identity"
	"github.com/Dhyanesh27/evotrack/schema"
)

// normalizeCommit converts a raw commit into its storage-ready record,
// resolving the author through the identity table. The timestamp is
// converted to UTC preserving the instant; line stats sum the per-file
// change list produced against the primary parent, so reader and
// normalizer numbers agree for merges.
func normalizeCommit(repoID string, raw *schema.RawCommit, resolver *identity.Resolver) (schema.NormalizedCommit, error) {
	if raw.Hash == "" {
		return schema.NormalizedCommit{}, &schema.MalformedCommitError{Reason: "missing hash"}
	}
	if raw.CommittedAt.IsZero() {
		return schema.NormalizedCommit{}, &schema.MalformedCommitError{Hash: raw.Hash, Reason: "missing timestamp"}
	}
	if strings.TrimSpace(raw.AuthorName) == "" && strings.TrimSpace(raw.AuthorEmail) == "" {
		return schema.NormalizedCommit{}, &schema.MalformedCommitError{Hash: raw.Hash, Reason: "missing author"}
	}

	normalized := schema.NormalizedCommit{
		RepoID:    repoID,
		Hash:      raw.Hash,
		AuthorID:  resolver.Resolve(raw.AuthorName, raw.AuthorEmail),
		Timestamp: raw.CommittedAt.In(time.UTC),
		Subject:   raw.Subject(),
		IsMerge:   raw.IsMerge(),
	}

	for _, change := range raw.Changes {
		normalized.FilesChanged++
		if change.Binary {
			continue // Binary files count as changed but carry no lines
		}
		normalized.Insertions += change.Insertions
		normalized.Deletions += change.Deletions
	}
	return normalized, nil
}

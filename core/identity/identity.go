// Package identity resolves raw author (name, email) pairs to canonical
// contributor identities via union-find over observed aliases.
package identity

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/Dhyanesh27/evotrack/schema"
	"github.com/google/uuid"
)

// noreplyUserRegexp captures the username from a noreply local part,
// stripping an optional "12345+" id prefix.
var noreplyUserRegexp = regexp.MustCompile(`^(?:\d+\+)?(.+)$`)

// MergeConflict records a heuristic merge that joined two pre-existing
// distinct identities. Resolution is deterministic: the earliest-created
// identity wins. Conflicts are kept for logging, never left undecided.
type MergeConflict struct {
	Winner schema.ContributorIdentity
	Loser  schema.ContributorIdentity
	Alias  schema.Alias // The alias whose arrival triggered the merge
}

func (c MergeConflict) String() string {
	return fmt.Sprintf("identity merge conflict: alias %q <%s> joined %q (kept, seq %d) and %q (absorbed, seq %d)",
		c.Alias.Name, c.Alias.Email, c.Winner.DisplayName, c.Winner.Seq, c.Loser.DisplayName, c.Loser.Seq)
}

// node is one observed alias in the union-find forest.
type node struct {
	alias  schema.Alias
	parent int
	rank   int
}

// Resolver owns the identity table for a single repository. It is not safe
// for concurrent use; the extraction coordinator serializes access.
type Resolver struct {
	policy contract.IdentityPolicy

	nodes    []node
	byAlias  map[string]int   // normalized "name\x00email" -> node index
	byEmail  map[string]int   // normalized email -> representative node index
	byName   map[string][]int // normalized name -> node indexes
	identity map[int]*schema.ContributorIdentity // root index -> identity

	nextSeq   int64
	seedSeq   int64 // Identities with Seq below this were loaded, not created
	created   int
	conflicts []MergeConflict
}

// NewResolver builds a resolver seeded with previously persisted
// identities so resolution stays deterministic across extractions.
func NewResolver(policy contract.IdentityPolicy, seed []schema.ContributorIdentity) *Resolver {
	r := &Resolver{
		policy:   policy,
		byAlias:  make(map[string]int),
		byEmail:  make(map[string]int),
		byName:   make(map[string][]int),
		identity: make(map[int]*schema.ContributorIdentity),
		nextSeq:  1,
	}

	// Seed in creation order so earliest-created precedence holds.
	sorted := make([]schema.ContributorIdentity, len(seed))
	copy(sorted, seed)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	for _, id := range sorted {
		if id.Seq >= r.nextSeq {
			r.nextSeq = id.Seq + 1
		}
		dup := id
		dup.Aliases = append([]schema.Alias(nil), id.Aliases...)
		var root = -1
		for _, alias := range dup.Aliases {
			idx := r.addNode(alias)
			if root == -1 {
				root = idx
			} else {
				root = r.union(root, idx)
			}
		}
		if root >= 0 {
			r.identity[r.find(root)] = &dup
		}
	}
	r.seedSeq = r.nextSeq
	return r
}

// Resolve maps an author spelling to its canonical identity id, growing
// the identity table when the pair is new. The same (name, email) pair
// always resolves to the same id across calls.
func (r *Resolver) Resolve(name, email string) string {
	alias := schema.Alias{Name: strings.TrimSpace(name), Email: strings.ToLower(strings.TrimSpace(email))}
	key := aliasKey(alias)
	if idx, ok := r.byAlias[key]; ok {
		return r.identityOf(idx).ID
	}

	idx := r.addNode(alias)

	// Rule 1: shared normalized email always merges.
	if other, ok := r.byEmail[normalizeEmail(alias.Email)]; ok && other != idx {
		r.mergeRoots(idx, other, alias)
	}

	// Rule 2: shared normalized display name, when the noreply-username
	// heuristic links the emails. Merges are eager and transitive.
	if r.policy.NameHeuristic {
		for _, other := range r.byName[normalizeName(alias.Name)] {
			if r.find(other) == r.find(idx) {
				continue
			}
			if sameIdentityEmails(alias.Email, r.nodes[other].alias.Email, r.policy.NoreplyDomains) {
				r.mergeRoots(idx, other, alias)
			}
		}
	}

	id := r.identityOf(idx)
	id.Aliases = appendAlias(id.Aliases, alias)
	return id.ID
}

// Identities returns the current identity table sorted by canonical id.
func (r *Resolver) Identities() []schema.ContributorIdentity {
	seen := make(map[string]bool)
	out := make([]schema.ContributorIdentity, 0, len(r.identity))
	for root, id := range r.identity {
		if r.find(root) != root || seen[id.ID] {
			continue
		}
		seen[id.ID] = true
		dup := *id
		dup.Aliases = append([]schema.Alias(nil), id.Aliases...)
		sort.Slice(dup.Aliases, func(i, j int) bool {
			if dup.Aliases[i].Email != dup.Aliases[j].Email {
				return dup.Aliases[i].Email < dup.Aliases[j].Email
			}
			return dup.Aliases[i].Name < dup.Aliases[j].Name
		})
		out = append(out, dup)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Created returns how many new identities this resolver registered, net
// of same-run identities later absorbed by a merge.
func (r *Resolver) Created() int {
	return r.created
}

// Conflicts returns merges that collapsed pre-existing identities.
func (r *Resolver) Conflicts() []MergeConflict {
	return r.conflicts
}

// addNode registers an alias node if absent and returns its index.
func (r *Resolver) addNode(alias schema.Alias) int {
	key := aliasKey(alias)
	if idx, ok := r.byAlias[key]; ok {
		return idx
	}
	idx := len(r.nodes)
	r.nodes = append(r.nodes, node{alias: alias, parent: idx})
	r.byAlias[key] = idx
	if email := normalizeEmail(alias.Email); email != "" {
		if _, ok := r.byEmail[email]; !ok {
			r.byEmail[email] = idx
		}
	}
	if name := normalizeName(alias.Name); name != "" {
		r.byName[name] = append(r.byName[name], idx)
	}
	return idx
}

// identityOf returns the identity of idx's set, creating one lazily.
func (r *Resolver) identityOf(idx int) *schema.ContributorIdentity {
	root := r.find(idx)
	if id, ok := r.identity[root]; ok {
		return id
	}
	alias := r.nodes[root].alias
	display := alias.Name
	if display == "" {
		display = alias.Email
	}
	id := &schema.ContributorIdentity{
		ID:          uuid.NewString(),
		DisplayName: display,
		Seq:         r.nextSeq,
	}
	r.nextSeq++
	r.created++
	r.identity[root] = id
	return id
}

// mergeRoots unions the sets of a and b, keeping the earliest-created
// identity when both sets already have one.
func (r *Resolver) mergeRoots(a, b int, trigger schema.Alias) {
	ra, rb := r.find(a), r.find(b)
	if ra == rb {
		return
	}
	idA, okA := r.identity[ra]
	idB, okB := r.identity[rb]

	root := r.union(ra, rb)

	switch {
	case okA && okB:
		winner, loser := idA, idB
		if idB.Seq < idA.Seq {
			winner, loser = idB, idA
		}
		r.conflicts = append(r.conflicts, MergeConflict{Winner: *winner, Loser: *loser, Alias: trigger})
		if loser.Seq >= r.seedSeq {
			r.created-- // Absorbed before it ever counted as new
		}
		for _, alias := range loser.Aliases {
			winner.Aliases = appendAlias(winner.Aliases, alias)
		}
		delete(r.identity, ra)
		delete(r.identity, rb)
		r.identity[root] = winner
	case okA:
		delete(r.identity, ra)
		r.identity[root] = idA
	case okB:
		delete(r.identity, rb)
		r.identity[root] = idB
	}
}

func (r *Resolver) find(idx int) int {
	for r.nodes[idx].parent != idx {
		r.nodes[idx].parent = r.nodes[r.nodes[idx].parent].parent
		idx = r.nodes[idx].parent
	}
	return idx
}

func (r *Resolver) union(a, b int) int {
	ra, rb := r.find(a), r.find(b)
	if ra == rb {
		return ra
	}
	if r.nodes[ra].rank < r.nodes[rb].rank {
		ra, rb = rb, ra
	}
	r.nodes[rb].parent = ra
	if r.nodes[ra].rank == r.nodes[rb].rank {
		r.nodes[ra].rank++
	}
	return ra
}

func aliasKey(alias schema.Alias) string {
	return normalizeName(alias.Name) + "\x00" + normalizeEmail(alias.Email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// noreplyUsername extracts the forge username from a noreply email, or ""
// when the email is not on a configured noreply domain.
func noreplyUsername(email string, domains []string) string {
	email = normalizeEmail(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return ""
	}
	for _, d := range domains {
		if domain == strings.ToLower(d) {
			if m := noreplyUserRegexp.FindStringSubmatch(local); m != nil {
				return m[1]
			}
		}
	}
	return ""
}

// sameIdentityEmails reports whether the noreply heuristic links two
// emails: a noreply username matching the other address's local part, or
// two noreply addresses with the same username.
func sameIdentityEmails(a, b string, domains []string) bool {
	ua := noreplyUsername(a, domains)
	ub := noreplyUsername(b, domains)
	switch {
	case ua != "" && ub != "":
		return ua == ub
	case ua != "":
		return ua == localPart(b)
	case ub != "":
		return ub == localPart(a)
	}
	return false
}

func localPart(email string) string {
	local, _, _ := strings.Cut(normalizeEmail(email), "@")
	return local
}

func appendAlias(aliases []schema.Alias, alias schema.Alias) []schema.Alias {
	for _, a := range aliases {
		if a == alias {
			return aliases
		}
	}
	return append(aliases, alias)
}

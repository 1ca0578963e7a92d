// Package neo4j stores extracted triples as scope-tagged Entity nodes and
// RELATION edges in Neo4j. Entities merge on case-normalized names; the
// display form keeps the first-seen casing.
package neo4j

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/anishkhadka/vaultflex/internal/core/domain"
)

type Index struct {
	driver neo4j.DriverWithContext
}

func New(ctx context.Context, uri, user, password string) (*Index, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "verify neo4j connectivity", err)
	}
	return &Index{driver: driver}, nil
}

func (i *Index) Close(ctx context.Context) error {
	return i.driver.Close(ctx)
}

const upsertTripleCypher = `
MERGE (s:Entity {key: $subjectKey, scope: $scope})
ON CREATE SET s.name = $subject
MERGE (o:Entity {key: $objectKey, scope: $scope})
ON CREATE SET o.name = $object
MERGE (s)-[r:RELATION {type: $predicateKey, scope: $scope}]->(o)
ON CREATE SET r.label = $predicate, r.sources = [$source]
ON MATCH SET r.sources = CASE
	WHEN $source IN r.sources THEN r.sources
	ELSE r.sources + $source
END`

// UpsertTriple merges on the case-normalized (subject, predicate, object)
// within the scope; re-extraction of a known fact from another chunk only
// extends the provenance list.
func (i *Index) UpsertTriple(ctx context.Context, scope string, stmt domain.TripleStatement, sourceChunkRef string) error {
	session := i.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, upsertTripleCypher, map[string]any{
			"scope":        scope,
			"subject":      stmt.Subject,
			"subjectKey":   domain.NormalizeEntity(stmt.Subject),
			"predicate":    stmt.Predicate,
			"predicateKey": domain.NormalizeEntity(stmt.Predicate),
			"object":       stmt.Object,
			"objectKey":    domain.NormalizeEntity(stmt.Object),
			"source":       sourceChunkRef,
		})
		return nil, err
	})
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, "upsert triple", err)
	}
	return nil
}

const expandFrontierCypher = `
MATCH (s:Entity {scope: $scope})-[r:RELATION {scope: $scope}]->(o:Entity {scope: $scope})
WHERE s.key IN $frontier OR o.key IN $frontier
RETURN s.name, s.key, r.label, r.sources, o.name, o.key`

type edge struct {
	subject    string
	subjectKey string
	predicate  string
	sources    []string
	object     string
	objectKey  string
}

// Traverse runs a breadth-first expansion from the seed entities, one hop
// per round trip, with a visited set so cyclic graphs terminate. No fact
// further than maxHops from every seed is returned.
func (i *Index) Traverse(ctx context.Context, scope string, seeds []string, maxHops int) ([]domain.GraphFact, error) {
	if maxHops <= 0 || len(seeds) == 0 {
		return nil, nil
	}

	frontier := make([]string, 0, len(seeds))
	visited := make(map[string]struct{}, len(seeds))
	for _, seed := range seeds {
		key := domain.NormalizeEntity(seed)
		if key == "" {
			continue
		}
		if _, ok := visited[key]; ok {
			continue
		}
		visited[key] = struct{}{}
		frontier = append(frontier, key)
	}

	session := i.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	var facts []domain.GraphFact
	seenTriples := make(map[string]struct{})

	for hop := 1; hop <= maxHops && len(frontier) > 0; hop++ {
		edges, err := i.expandFrontier(ctx, session, scope, frontier)
		if err != nil {
			return nil, domain.WrapError(domain.ErrTemporary, "traverse graph", err)
		}

		// Stable order within a hop, independent of store iteration order.
		sort.Slice(edges, func(a, b int) bool {
			if edges[a].subjectKey != edges[b].subjectKey {
				return edges[a].subjectKey < edges[b].subjectKey
			}
			if edges[a].predicate != edges[b].predicate {
				return edges[a].predicate < edges[b].predicate
			}
			return edges[a].objectKey < edges[b].objectKey
		})

		var next []string
		for _, e := range edges {
			tripleKey := e.subjectKey + "|" + domain.NormalizeEntity(e.predicate) + "|" + e.objectKey
			if _, ok := seenTriples[tripleKey]; !ok {
				seenTriples[tripleKey] = struct{}{}
				facts = append(facts, domain.GraphFact{
					Triple: domain.Triple{
						Scope:        scope,
						Subject:      e.subject,
						Predicate:    e.predicate,
						Object:       e.object,
						SourceChunks: e.sources,
					},
					Hops: hop,
				})
			}

			for _, key := range []string{e.subjectKey, e.objectKey} {
				if _, ok := visited[key]; !ok {
					visited[key] = struct{}{}
					next = append(next, key)
				}
			}
		}
		frontier = next
	}
	return facts, nil
}

func (i *Index) expandFrontier(ctx context.Context, session neo4j.SessionWithContext, scope string, frontier []string) ([]edge, error) {
	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		cursor, err := tx.Run(ctx, expandFrontierCypher, map[string]any{
			"scope":    scope,
			"frontier": frontier,
		})
		if err != nil {
			return nil, err
		}

		var edges []edge
		for cursor.Next(ctx) {
			values := cursor.Record().Values
			if len(values) != 6 {
				continue
			}
			edges = append(edges, edge{
				subject:    asString(values[0]),
				subjectKey: asString(values[1]),
				predicate:  asString(values[2]),
				sources:    asStringSlice(values[3]),
				object:     asString(values[4]),
				objectKey:  asString(values[5]),
			})
		}
		return edges, cursor.Err()
	})
	if err != nil {
		return nil, err
	}
	edges, _ := result.([]edge)
	return edges, nil
}

// RemoveScope detaches and deletes every entity tagged with the scope,
// taking its relations with it.
func (i *Index) RemoveScope(ctx context.Context, scope string) error {
	session := i.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `MATCH (n:Entity {scope: $scope}) DETACH DELETE n`, map[string]any{
			"scope": scope,
		})
		return nil, err
	})
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, "remove graph scope", err)
	}
	return nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

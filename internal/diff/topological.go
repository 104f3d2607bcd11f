package diff

import (
	"sort"

	"github.com/schemasync/schemasync/ir"
)

// topologicallySortTables sorts tables in dependency order:
// tables that are referenced by foreign keys come before the tables that reference them.
// Only references between tables of the given set are considered.
func topologicallySortTables(tables []*ir.Table) []*ir.Table {
	if len(tables) <= 1 {
		return tables
	}

	// Build maps for efficient lookup
	tableMap := make(map[string]*ir.Table)
	var insertionOrder []string
	for _, table := range tables {
		key := table.Key()
		tableMap[key] = table
		insertionOrder = append(insertionOrder, key)
	}

	// Build dependency graph
	inDegree := make(map[string]int)
	adjList := make(map[string][]string)

	for key := range tableMap {
		inDegree[key] = 0
		adjList[key] = []string{}
	}

	// Build edges: if tableA has a foreign key to tableB, add edge tableB -> tableA
	for _, keyA := range insertionOrder {
		tableA := tableMap[keyA]
		seen := make(map[string]bool)
		for _, fk := range tableA.ForeignKeys() {
			keyB := fk.ReferencedTableKey()
			if _, exists := tableMap[keyB]; !exists || keyA == keyB || seen[keyB] {
				continue
			}
			seen[keyB] = true
			adjList[keyB] = append(adjList[keyB], keyA)
			inDegree[keyA]++
		}
	}

	// Kahn's algorithm. The queue is kept in insertion order so that unrelated tables
	// keep the order they have in the model.
	position := make(map[string]int, len(insertionOrder))
	for i, key := range insertionOrder {
		position[key] = i
	}
	byPosition := func(keys []string) {
		sort.SliceStable(keys, func(i, j int) bool {
			return position[keys[i]] < position[keys[j]]
		})
	}

	var queue []string
	var result []string
	processed := make(map[string]bool, len(tableMap))

	for _, key := range insertionOrder {
		if inDegree[key] == 0 {
			queue = append(queue, key)
		}
	}

	for len(result) < len(tableMap) {
		if len(queue) == 0 {
			// Cycle: take the next unprocessed table in insertion order. Foreign keys are
			// always added after every table exists, so cycle members may come in any order.
			next := nextInOrder(insertionOrder, processed)
			if next == "" {
				break
			}
			queue = append(queue, next)
			inDegree[next] = 0
		}

		current := queue[0]
		queue = queue[1:]
		if processed[current] {
			continue
		}
		processed[current] = true
		result = append(result, current)

		for _, neighbor := range adjList[current] {
			inDegree[neighbor]--
			if inDegree[neighbor] <= 0 && !processed[neighbor] {
				queue = append(queue, neighbor)
				byPosition(queue)
			}
		}
	}

	sortedTables := make([]*ir.Table, 0, len(result))
	for _, key := range result {
		sortedTables = append(sortedTables, tableMap[key])
	}
	return sortedTables
}

// reverseTables returns the tables in reverse order
func reverseTables(tables []*ir.Table) []*ir.Table {
	reversed := make([]*ir.Table, len(tables))
	for i, table := range tables {
		reversed[len(tables)-1-i] = table
	}
	return reversed
}

// nextInOrder returns the first key in order that has not been processed yet
func nextInOrder(order []string, processed map[string]bool) string {
	for _, key := range order {
		if !processed[key] {
			return key
		}
	}
	return ""
}

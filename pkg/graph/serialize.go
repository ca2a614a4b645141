package graph

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

// Output file names.
const (
	GraphJSONFile    = "concept_graph.json"
	GraphMLFile      = "concept_graph.graphml"
	RawEdgesJSONFile = "edges_raw.json"
)

// RawEdge is one unmerged triple with its chunk of origin, written alongside
// the graph for debugging and audit.
type RawEdge struct {
	ChunkIndex int    `json:"chunk_index"`
	Source     string `json:"source"`
	Relation   string `json:"relation"`
	Target     string `json:"target"`
	Evidence   string `json:"evidence"`
}

// WriteJSON writes the graph to dir/concept_graph.json.
func WriteJSON(g *ConceptGraph, dir string) error {
	return writeJSONFile(filepath.Join(dir, GraphJSONFile), g)
}

// WriteRawEdges writes the unmerged per-chunk edge list to dir/edges_raw.json.
func WriteRawEdges(edges []RawEdge, dir string) error {
	if edges == nil {
		edges = []RawEdge{}
	}
	return writeJSONFile(filepath.Join(dir, RawEdgesJSONFile), edges)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// GraphML document model. The format is a small fixed XML dialect, so it is
// emitted directly with encoding/xml rather than through a graph library.
type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	Xmlns   string       `xml:"xmlns,attr"`
	Keys    []graphmlKey `xml:"key"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type graphmlGraph struct {
	ID          string        `xml:"id,attr"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// WriteGraphML writes the graph to dir/concept_graph.graphml as standard
// attributed-graph interchange XML.
func WriteGraphML(g *ConceptGraph, dir string) error {
	doc := graphmlDoc{
		Xmlns: "http://graphml.graphdrawing.org/xmlns",
		Keys: []graphmlKey{
			{ID: "d0", For: "node", AttrName: "frequency", AttrType: "int"},
			{ID: "d1", For: "edge", AttrName: "relation", AttrType: "string"},
			{ID: "d2", For: "edge", AttrName: "weight", AttrType: "int"},
			{ID: "d3", For: "edge", AttrName: "evidence", AttrType: "string"},
		},
		Graph: graphmlGraph{
			ID:          g.Meta.RunID,
			EdgeDefault: "directed",
		},
	}
	if doc.Graph.ID == "" {
		doc.Graph.ID = "concepts"
	}

	for _, n := range g.Nodes {
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphmlNode{
			ID: n.ID,
			Data: []graphmlData{
				{Key: "d0", Value: fmt.Sprintf("%d", n.Frequency)},
			},
		})
	}
	for _, e := range g.Edges {
		doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{
			Source: e.Source,
			Target: e.Target,
			Data: []graphmlData{
				{Key: "d1", Value: e.Relation},
				{Key: "d2", Value: fmt.Sprintf("%d", e.Weight)},
				{Key: "d3", Value: e.Evidence},
			},
		})
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal graphml: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')

	path := filepath.Join(dir, GraphMLFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", GraphMLFile, err)
	}
	return nil
}

// Package pkg provides the libraries behind orientplace, a tool that scores
// the eight orientations of a macro by the halo cost its nets induce.
//
// # Overview
//
// For each orientation, the nets connecting to the macro are described by
// bounding boxes on a square grid. Their halo passes paint a wire image whose
// cells carry the cost of placing the macro there. The pkg directory is
// organized into these areas:
//
//  1. [wireimg] - Wire images, the per-orientation accumulator and the batch drivers
//  2. [netio] - JSON/TOML net files and the batch JSON format
//  3. [pipeline] - Orchestration (validate → compute → render) with caching
//  4. [cache] - File, Redis and null caches for computed batches
//  5. [render/heatmap] - PNG/SVG heatmaps
//  6. [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Data Flow
//
//	Net file (JSON/TOML)
//	         ↓
//	    netio.ReadNetMapFile
//	         ↓
//	    wireimg.Validate
//	         ↓
//	    wireimg.Compute / ComputeParallel  ←→  cache
//	         ↓
//	    netio.WriteBatch, heatmap.RenderBatch
//
// [wireimg]: github.com/matzehuels/orientplace/pkg/wireimg
// [netio]: github.com/matzehuels/orientplace/pkg/netio
// [pipeline]: github.com/matzehuels/orientplace/pkg/pipeline
// [cache]: github.com/matzehuels/orientplace/pkg/cache
// [render/heatmap]: github.com/matzehuels/orientplace/pkg/render/heatmap
// [errors]: github.com/matzehuels/orientplace/pkg/errors
// [observability]: github.com/matzehuels/orientplace/pkg/observability
// [buildinfo]: github.com/matzehuels/orientplace/pkg/buildinfo
package pkg

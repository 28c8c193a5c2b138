// Package netio reads net geometry files and writes wire image batches.
//
// # Net files
//
// Net files describe the nets of every orientation, in JSON or TOML. Both
// encodings share one shape:
//
//	{
//	  "grid": 224,
//	  "orientations": [
//	    {
//	      "index": 0,
//	      "nets": [
//	        {"id": "clk", "start_x": 10, "start_y": 4, "end_x": 30, "end_y": 19,
//	         "base_offset_x": 1, "base_offset_y": 0, "weight": 1.0}
//	      ]
//	    }
//	  ]
//	}
//
// or, in TOML:
//
//	grid = 224
//
//	[[orientations]]
//	index = 0
//
//	[[orientations.nets]]
//	id = "clk"
//	start_x = 10
//	start_y = 4
//	end_x = 30
//	end_y = 19
//	base_offset_x = 1
//	base_offset_y = 0
//	weight = 1.0
//
// The grid field is optional; callers may supply the grid size separately.
// Nets keep the order in which they appear, which decides overlap resolution
// in the wire image kernel. An orientation may list no nets but every index
// 0..7 must appear exactly once. Net ids must be unique within an orientation.
// Unknown fields are rejected.
//
// # Batch files
//
// [WriteBatch] emits JSON with one entry per orientation:
//
//	{
//	  "grid": 4,
//	  "images": [
//	    {"orientation": 0, "stats": {...}, "cells": [[2, 2, 2, 0], ...]},
//	    ...
//	  ]
//	}
//
// cells is indexed [x][y]. [ReadBatch] loads the same format back.
package netio

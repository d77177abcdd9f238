// Package objects incrementally groups segment observations into object
// nodes and keeps each object attached to a place.
//
// Each call to Updater.Update runs one cycle over the scene graph:
//
//  1. new segments are scored and connected to overlapping segments;
//  2. components that gained an edge are retired with their objects;
//  3. connected groups of eligible segments become new components and are
//     partitioned by the clustering oracle;
//  4. each cluster whose merged feature is relevant becomes an object;
//  5. unsettled objects are attached to the nearest place.
//
// The caller must hold exclusive access to the graph for the duration of
// Update.
//
// Logging goes to three streams installed with SetLogWriters: ops for
// anomalies an operator should act on, diag for skipped work and cycle
// summaries, trace for per-edge and per-object detail.
package objects

// Package study runs reconstruction experiments over synthetic detector
// pulses: single diagnostic runs, a noise-level sweep and an event-count
// scaling study.
//
// Every run is parameterized by a deterministic seed derived from the
// study's base seed, the cell coordinate and the repetition index, so a
// study produces identical tables regardless of how many workers execute
// it or how the scheduler interleaves them. Reconstruction failures in a
// single run are isolated: the offending observation is excluded and
// counted on its cell instead of aborting the study.
package study

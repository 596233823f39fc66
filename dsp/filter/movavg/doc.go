// Package movavg provides a causal trailing moving-average reconstruction
// filter.
//
// The output at index i is the mean of the samples [max(0, i-window+1) .. i].
// Using a trailing rather than centered window avoids lookahead, matching
// realistic online filtering; the window shrinks at the start of the series,
// which is a deliberate edge policy rather than a defect. Processing is O(n)
// via a running sum.
package movavg

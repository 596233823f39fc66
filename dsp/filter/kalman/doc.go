// Package kalman implements a linear Kalman filter for scalar sample
// streams driven by a small state-space model.
//
// Each sample passes through the textbook predict/update recursion:
//
//	x' = F x              P' = F P Fᵀ + Q
//	y  = z − H x'         S  = H P' Hᵀ + R
//	K  = P' Hᵀ S⁻¹
//	x″ = x' + K y         P″ = (I − K H) P'
//
// The posterior covariance is re-symmetrized as (P″ + P″ᵀ)/2 after every
// update so that rounding drift cannot accumulate into an asymmetric or
// indefinite matrix. When the innovation covariance S collapses below a
// small tolerance the update reports a numerical instability instead of
// dividing by a vanishing quantity.
//
// Predict and Update are pure functions over an explicit State value, so
// callers that need custom gain inspection or missing-data handling can
// drive the recursion themselves. Filter wraps the same recursion behind
// the batch Process call used by the reconstruction pipelines, with a
// random-walk local-level model as the default.
package kalman

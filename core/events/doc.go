// Package events defines the typed segmentation event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - contact.*
//   - manipulation.*
//
// Semantics used across the package:
//
//   - ContactSet: the full set of touch relations a tracked object has at
//     one instant, keyed by the identity of the other object.
//   - Gained/Lost: a delta relative to the detector's previous cycle, not
//     an absolute state.
//
// contact events
//
//   - Contact (contact.gained): the tracked object touched at least one
//     object it was not touching on the previous detector cycle; carries
//     the full current contact set.
//   - LossOfContact (contact.lost): the tracked object stopped touching
//     at least one object; carries both the current and the last known
//     contact set so consumers can compute which objects disappeared.
//
// manipulation events
//
//   - PickUp (manipulation.pick_up): a hand lifted the tracked object
//     clear of a supporting surface. The base timestamp is the start of
//     the manipulation (the initial hand contact); End is set once when
//     the lift is confirmed.
//
// Events are immutable once recorded. PickUp is the single exception:
// the detector that owns it finishes it exactly once before recording.
package events

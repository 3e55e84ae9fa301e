package fcn

import "errors"

var (
	// ErrInvalidConfig is returned when model configuration cannot produce a
	// consistent graph.
	ErrInvalidConfig = errors.New("fcn: invalid config")

	// ErrWeightFile is returned when the weight file is missing, unreadable
	// or holds a tensor whose shape differs from the layer of the same name.
	ErrWeightFile = errors.New("fcn: cannot load weight file")

	// ErrNoMatchingLayers is returned when the weight file shares no layer
	// name with the backbone.
	ErrNoMatchingLayers = errors.New("fcn: weight file has no matching layer")

	// ErrLayerNameCollision is returned when two layers were registered under
	// the same name.
	ErrLayerNameCollision = errors.New("fcn: layer name collision")
)

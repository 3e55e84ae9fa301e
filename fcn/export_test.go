package fcn

var CheckLayerNames = checkLayerNames

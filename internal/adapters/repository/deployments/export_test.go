package deployments

var BaseLabel = baseLabel

package slq

// Internal hooks exercised by the external test package.
var SearchValidPrefix = searchValidPrefix

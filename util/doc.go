// Package util provides small generic helpers shared across factorygirl packages.
package util

// Package cvscan is an OpenCV implementation of the scan.Locator and
// scan.Warper interfaces, built on gocv.
//
// It follows the same recipe as the pure-Go pipeline (Canny, tree-mode
// contours with simple chain approximation, approxPolyDP, convexHull,
// warpPerspective) but delegates each step to OpenCV. The package is only
// compiled with the gocv build tag:
//
//	go build -tags gocv ./...
//
// Corner ordering and the orientation check are shared with the detection
// package so both backends accept exactly the same cards.
package cvscan

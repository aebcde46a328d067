package ui

// Package ui contains the Fyne user interface: the download form, progress
// display and the observer that mirrors controller notifications into widgets.

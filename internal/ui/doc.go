// Package ui is the Bubble Tea front end of boardview.
//
// Core pieces:
//   - View: a screen or region with its own Init/Update/View (Elm-style)
//   - GalleryView: the thumbnail strip and detail pane; it is the gallery
//     controller's Surface
//   - OverlayStack: modal views (delete confirmation, upload path) with a dismiss key
//   - KeybindRegistry/KeyHandler: single keys plus SPC-leader sequences
//
// The gallery.Controller owns all gallery state. Update calls into it, and
// its network work comes back as applyMsg values, so every state change
// happens inside Update.
package ui

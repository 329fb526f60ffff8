// Package publish pushes every successfully built shader to a live-preview
// endpoint over socket.io, so an editor or viewer can hot-swap the program
// while the project is being edited in watch mode.
//
// The connection is opened on the first publish and reused afterwards. A
// dropped connection is dialed again on the next publish.
package publish

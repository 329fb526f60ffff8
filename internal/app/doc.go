// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the build lifecycle (load the template
// library and the project, generate every shader, write the results),
// decoupled from any specific entrypoint like a CLI or server.
package app

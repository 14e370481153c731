// Package services implements the driving port interfaces.
// Services contain the core pipeline logic - extraction, chunking
// orchestration, embedding and answering - and coordinate calls to
// driven ports (adapters).
//
// Services never talk to a PDF library, database or HTTP API directly;
// everything external arrives through a port.
package services

package main

// General API documentation for swaggo. Generate with `swag init -g cmd/dalled/docs.go -o docs`.
//
// @title           dalled API
// @version         1.0
// @description     Turns text prompts into images with a DALL-E style model and returns hosted image URLs.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http

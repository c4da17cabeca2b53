/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/speakwise/speech-api/cmd"

// @title           SpeakWise Speech Analysis API
// @version         1.0.0
// @description     A speech and communication analysis API: upload a video, poll for transcription, grammar and fluency scoring
// @termsOfService  http://swagger.io/terms/
// @contact.name    API Support
// @contact.url     https://github.com/speakwise/speech-api
// @contact.email   support@example.com
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /
// @schemes         http https
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Bearer JWT issued by the auth provider
func main() {
	cmd.Execute()
}

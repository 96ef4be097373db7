package anonchat

/* @title           AnonChat SDK API
@version         1.0
@description     Anonymous topic chat API documentation
@host            localhost:6789
@BasePath        /api/v1
*/

/* This file is now split into:
- handler_topic.go
- handler_message.go
*/

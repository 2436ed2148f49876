package constants

const (
	ResourceNotFound    = `{"message":"The requested resource could not be found"}`
	EndpointNotFound    = `{"message":"This endpoint does not exist"}`
	BadRequest          = `{"message":"The request is malformed or missing mandatory fields"}`
	Forbidden           = `{"message":"You are not allowed to perform this action"}`
	Unauthorized        = `{"message":"A valid session token is required, use 'Authorization: Bearer <token>'"}`
	InternalServerError = `{"message":"Something went wrong on our end"}`
	MethodNotAllowed    = `{"message":"That method is not allowed on this endpoint"}`
	BodyRequired        = `{"message":"A request body is required for this endpoint"}`
)

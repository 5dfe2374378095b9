package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"username",
			"password_hash",
			"playtime",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "long",
			},

			"username": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"password_hash": bson.M{
				"bsonType": "string",
			},

			"playtime": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			"email": bson.M{
				"bsonType": "string",
			},

			"phone": bson.M{
				"bsonType": "string",
			},
		},
	},
}

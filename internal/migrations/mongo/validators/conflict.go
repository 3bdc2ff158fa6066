package validators

import "go.mongodb.org/mongo-driver/bson"

var ConflictValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"org_id",
			"resource_type",
			"resource_id",
			"booking1_id",
			"period_start",
			"period_end",
			"conflict_type",
			"resolved",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"org_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"resource_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"room", "asset"},
			},

			"resource_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"booking1_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			// Empty for maintenance conflicts.
			"booking2_id": bson.M{
				"bsonType": "string",
			},

			"period_start": bson.M{
				"bsonType": "date",
			},

			"period_end": bson.M{
				"bsonType": "date",
			},

			"conflict_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"overlap",
					"double_booking",
					"maintenance",
				},
			},

			"resolved": bson.M{
				"bsonType": "bool",
			},

			"resolved_by": bson.M{
				"bsonType": "string",
			},

			"resolved_at": bson.M{
				"bsonType": "date",
			},

			"resolution_action": bson.M{
				"bsonType": "string",
			},

			"notes": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

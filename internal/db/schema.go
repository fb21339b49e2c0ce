package db

const schema = `
CREATE TABLE IF NOT EXISTS routes (
	id TEXT PRIMARY KEY,
	routeHash TEXT NOT NULL,
	summary TEXT NOT NULL,
	legsCount INTEGER NOT NULL,
	departureAt REAL NOT NULL,
	arrivalAt REAL NOT NULL,
	arrivalTrafficAt REAL NOT NULL,
	queriedAt REAL NOT NULL,
	trafficModel TEXT NOT NULL,
	commute TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS routes_hash ON routes(routeHash);

CREATE TABLE IF NOT EXISTS legs (
	id TEXT PRIMARY KEY,
	routeId TEXT NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
	startLat REAL NOT NULL,
	startLng REAL NOT NULL,
	endLat REAL NOT NULL,
	endLng REAL NOT NULL,
	distanceText TEXT NOT NULL,
	distanceMeters INTEGER NOT NULL,
	durationText TEXT NOT NULL,
	durationSeconds INTEGER NOT NULL,
	trafficText TEXT NOT NULL,
	trafficSeconds INTEGER NOT NULL,
	startAddress TEXT NOT NULL,
	endAddress TEXT NOT NULL,
	stepsCount INTEGER NOT NULL,
	crowFliesMeters REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS steps (
	id TEXT PRIMARY KEY,
	legId TEXT NOT NULL REFERENCES legs(id) ON DELETE CASCADE,
	stepNumber INTEGER NOT NULL,
	htmlInstruction TEXT NOT NULL,
	plainInstruction TEXT NOT NULL,
	maneuver TEXT,
	distanceText TEXT NOT NULL,
	distanceMeters INTEGER NOT NULL,
	durationText TEXT NOT NULL,
	durationSeconds INTEGER NOT NULL,
	startLat REAL NOT NULL,
	startLng REAL NOT NULL,
	endLat REAL NOT NULL,
	endLng REAL NOT NULL,
	travelMode TEXT NOT NULL,
	UNIQUE(legId, stepNumber)
);
`

// Package scene turns a room description into a zoned surfel board.
//
// A room is an axis-aligned box of cells with an optional floor, ceiling
// and four walls, plus flat platforms (tables, shelves, beds) and holes in
// the floor. RoomBuilder rasterises it cell by cell; Scene is its JSON file
// form used by the roomscan command.
package scene

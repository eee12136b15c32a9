package models

type Identifier[K comparable] interface {
	GetId() K
}

// interface for dataloader result
type Data[K comparable] interface {
	Identifier[K]
	GetDefault(K) Data[K]
}

func (f Fund) GetId() string {
	return f.ID
}

func (f Fund) GetDefault(id string) Data[string] {
	return Fund{ID: id}
}

func (l Line) GetId() string {
	return l.ID
}

func (l Line) GetDefault(id string) Data[string] {
	return Line{ID: id}
}

func (i Item) GetId() int {
	return i.ID
}

func (i Item) GetDefault(id int) Data[int] {
	return Item{ID: id}
}

func (e Employee) GetId() int {
	return e.ID
}

func (e Employee) GetDefault(id int) Data[int] {
	return Employee{ID: id}
}

func (p People) GetId() int {
	return p.ID
}

func (p People) GetDefault(id int) Data[int] {
	return People{ID: id}
}

func (a Activity) GetId() int {
	return a.ID
}

func (a Activity) GetDefault(id int) Data[int] {
	return Activity{ID: id, PayType: PayTypeGeneral}
}

func (g GrantLine) GetId() int {
	return g.ID
}

func (g GrantLine) GetDefault(id int) Data[int] {
	return GrantLine{ID: id}
}

package seeders

// Фикстуры базовых справочников.

type departmentFixture struct {
	Name        string
	Code        string
	Description string
}

var departmentFixtures = []departmentFixture{
	{Name: "Лаборатория электроники", Code: "LAB-EL", Description: "Измерительное и паяльное оборудование"},
	{Name: "Фотостудия", Code: "PHOTO", Description: "Съемочная техника и свет"},
	{Name: "Механический цех", Code: "MECH", Description: "Станки и инструмент"},
	{Name: "ИТ-отдел", Code: "IT", Description: "Серверное и сетевое оборудование"},
}

type categoryFixture struct {
	Name             string
	Description      string
	ApprovalRequired bool
	MaxBookingHours  uint
}

var categoryFixtures = []categoryFixture{
	{Name: "Измерительные приборы", Description: "Осциллографы, анализаторы, мультиметры", ApprovalRequired: false, MaxBookingHours: 8},
	{Name: "Съемочная техника", Description: "Камеры, объективы, стабилизаторы", ApprovalRequired: true, MaxBookingHours: 24},
	{Name: "Станки", Description: "Оборудование с обязательным допуском", ApprovalRequired: true, MaxBookingHours: 4},
	{Name: "Переносное оборудование", Description: "Проекторы, ноутбуки, акустика", ApprovalRequired: false, MaxBookingHours: 72},
}

type equipmentFixture struct {
	Name            string
	CategoryName    string
	DepartmentCode  string
	InventoryNumber string
	Location        string
}

var equipmentFixtures = []equipmentFixture{
	{Name: "Осциллограф Rigol DS1104", CategoryName: "Измерительные приборы", DepartmentCode: "LAB-EL", InventoryNumber: "INV-0001", Location: "каб. 214, стол 3"},
	{Name: "Анализатор спектра Siglent SSA3021X", CategoryName: "Измерительные приборы", DepartmentCode: "LAB-EL", InventoryNumber: "INV-0002", Location: "каб. 214, шкаф 1"},
	{Name: "Камера Sony FX3", CategoryName: "Съемочная техника", DepartmentCode: "PHOTO", InventoryNumber: "INV-0101", Location: "студия, сейф"},
	{Name: "Комплект света Aputure 600d", CategoryName: "Съемочная техника", DepartmentCode: "PHOTO", InventoryNumber: "INV-0102", Location: "студия, стеллаж 2"},
	{Name: "Фрезерный станок JET JMD-3", CategoryName: "Станки", DepartmentCode: "MECH", InventoryNumber: "INV-0201", Location: "цех, участок Б"},
	{Name: "Проектор Epson EB-2250U", CategoryName: "Переносное оборудование", DepartmentCode: "IT", InventoryNumber: "INV-0301", Location: "серверная, полка 4"},
}
